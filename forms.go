package main

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

const minPasswordLength = 6

// formMode distinguishes blank create drafts from edit drafts pre-populated
// out of a record snapshot.
type formMode string

const (
	formModeCreate formMode = "create"
	formModeEdit   formMode = "edit"
)

// locationPath is the draft state behind the district→sector→cell→village
// cascade. Setting an ancestor clears every descendant; the resolver in
// locations.go stays pure and owns none of this state.
type locationPath struct {
	District string
	Sector   string
	Cell     string
	Village  string
	Street   string
}

func (p *locationPath) SetDistrict(district string) {
	p.District = strings.TrimSpace(district)
	p.Sector = ""
	p.Cell = ""
	p.Village = ""
}

func (p *locationPath) SetSector(sector string) {
	p.Sector = strings.TrimSpace(sector)
	p.Cell = ""
	p.Village = ""
}

func (p *locationPath) SetCell(cell string) {
	p.Cell = strings.TrimSpace(cell)
	p.Village = ""
}

func (p *locationPath) SetVillage(village string) {
	p.Village = strings.TrimSpace(village)
}

func (p *locationPath) SetStreet(street string) {
	p.Street = strings.TrimSpace(street)
}

// validationError carries the first failing rule's message. It is surfaced
// inline and never reaches the network.
type validationError struct {
	Message string
}

func (e *validationError) Error() string { return e.Message }

func failValidation(message string) error {
	return &validationError{Message: message}
}

func requiredField(value, label string) error {
	if strings.TrimSpace(value) == "" {
		return failValidation(label + " is required")
	}
	return nil
}

func positiveNumber(raw, label string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, failValidation(label + " must be a number")
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, failValidation(label + " must be a positive number")
	}
	return value, nil
}

// userDraft backs both the create-user and edit-user forms. Password fields
// are only validated in create mode or when a new password was typed.
type userDraft struct {
	Mode            formMode
	ID              string
	FullName        string
	Email           string
	Phone           string
	Role            string
	Password        string
	ConfirmPassword string
	Location        locationPath
}

func newUserDraft() *userDraft {
	return &userDraft{Mode: formModeCreate}
}

func editUserDraft(user User) *userDraft {
	return &userDraft{
		Mode:     formModeEdit,
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Phone:    user.Phone,
		Role:     user.Role,
		Location: locationPath{
			District: user.District,
			Sector:   user.Sector,
			Cell:     user.Cell,
			Village:  user.Village,
		},
	}
}

func (d *userDraft) validate() error {
	if err := requiredField(d.FullName, "Full name"); err != nil {
		return err
	}
	if err := requiredField(d.Email, "Email"); err != nil {
		return err
	}
	if err := requiredField(d.Phone, "Phone"); err != nil {
		return err
	}
	if d.Mode == formModeCreate || d.Password != "" {
		if err := requiredField(d.Password, "Password"); err != nil {
			return err
		}
		if len(d.Password) < minPasswordLength {
			return failValidation("Password must be at least 6 characters")
		}
		if d.Password != d.ConfirmPassword {
			return failValidation("Passwords do not match")
		}
	}
	return nil
}

// companyWasteTypes are the collection categories a company can register for.
var companyWasteTypes = []string{"General", "Plastics", "Paper", "Organic", "Metal", "Electronic"}

// companyDraft backs the multi-step company registration wizard. The location
// step uses the cascade; moving an ancestor select clears its descendants via
// locationPath.
type companyDraft struct {
	Mode       formMode
	ID         string
	Name       string
	Email      string
	Phone      string
	WasteTypes []string
	Location   locationPath
}

func newCompanyDraft() *companyDraft {
	return &companyDraft{Mode: formModeCreate}
}

func editCompanyDraft(company Company) *companyDraft {
	return &companyDraft{
		Mode:       formModeEdit,
		ID:         company.ID,
		Name:       company.Name,
		Email:      company.Email,
		Phone:      company.Phone,
		WasteTypes: append([]string{}, company.WasteTypes...),
		Location: locationPath{
			District: company.District,
			Sector:   company.Sector,
			Cell:     company.Cell,
			Village:  company.Village,
			Street:   company.Street,
		},
	}
}

func (d *companyDraft) validate() error {
	if err := requiredField(d.Name, "Company name"); err != nil {
		return err
	}
	if err := requiredField(d.Email, "Email"); err != nil {
		return err
	}
	if err := requiredField(d.Phone, "Phone"); err != nil {
		return err
	}
	if len(d.WasteTypes) == 0 {
		return failValidation("Select at least one waste type")
	}
	if err := requiredField(d.Location.District, "District"); err != nil {
		return err
	}
	if err := requiredField(d.Location.Sector, "Sector"); err != nil {
		return err
	}
	if err := requiredField(d.Location.Cell, "Cell"); err != nil {
		return err
	}
	if err := requiredField(d.Location.Village, "Village"); err != nil {
		return err
	}
	return nil
}

type eventDraft struct {
	Mode        formMode
	ID          string
	Title       string
	Description string
	EventDate   string
	StartTime   string
	Location    locationPath
}

func newEventDraft() *eventDraft {
	return &eventDraft{Mode: formModeCreate}
}

func editEventDraft(event CommunityEvent) *eventDraft {
	return &eventDraft{
		Mode:        formModeEdit,
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		EventDate:   event.EventDate,
		StartTime:   event.StartTime,
		Location: locationPath{
			District: event.District,
			Sector:   event.Sector,
		},
	}
}

func (d *eventDraft) validate() error {
	if err := requiredField(d.Title, "Title"); err != nil {
		return err
	}
	if err := requiredField(d.EventDate, "Event date"); err != nil {
		return err
	}
	if err := requiredField(d.Location.District, "District"); err != nil {
		return err
	}
	return nil
}

type materialDraft struct {
	Mode        formMode
	ID          string
	Title       string
	Category    string
	Description string
	ContentURL  string
}

func newMaterialDraft() *materialDraft {
	return &materialDraft{Mode: formModeCreate}
}

func editMaterialDraft(material EducationMaterial) *materialDraft {
	return &materialDraft{
		Mode:        formModeEdit,
		ID:          material.ID,
		Title:       material.Title,
		Category:    material.Category,
		Description: material.Description,
		ContentURL:  material.ContentURL,
	}
}

func (d *materialDraft) validate() error {
	if err := requiredField(d.Title, "Title"); err != nil {
		return err
	}
	if err := requiredField(d.Category, "Category"); err != nil {
		return err
	}
	return nil
}

// approvalDraft backs the booking approve modal: price, operator notes and the
// sorted-properly confirmation.
type approvalDraft struct {
	BookingID      string
	Price          string
	Notes          string
	SortedProperly bool

	price decimal.Decimal
}

func newApprovalDraft(bookingID string) *approvalDraft {
	return &approvalDraft{BookingID: bookingID}
}

func (d *approvalDraft) validate() error {
	if err := requiredField(d.Price, "Price"); err != nil {
		return err
	}
	price, err := positiveNumber(d.Price, "Price")
	if err != nil {
		return err
	}
	d.price = price
	return nil
}

// submitGuard enforces one in-flight submit per form. The caller disables the
// triggering control for the duration; begin refuses re-entry until end runs.
type submitGuard struct {
	mu       sync.Mutex
	inFlight bool
}

func (g *submitGuard) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight {
		return false
	}
	g.inFlight = true
	return true
}

func (g *submitGuard) end() {
	g.mu.Lock()
	g.inFlight = false
	g.mu.Unlock()
}

var errSubmitInFlight = errors.New("a previous submit is still in flight")

// submitForm runs local validation and, only if it passes, a single delegated
// remote call. Validation failures issue zero network calls. Remote failures
// come back as-is so the caller can surface the server message verbatim.
func submitForm(ctx context.Context, guard *submitGuard, validate func() error, call func(context.Context) error) error {
	if err := validate(); err != nil {
		return err
	}
	if !guard.begin() {
		return errSubmitInFlight
	}
	defer guard.end()
	return call(ctx)
}

// submitErrorMessage maps a submit failure to what the form's error slot
// shows: validation and server-reported messages verbatim, anything else a
// generic failure line.
func submitErrorMessage(err error, generic string) string {
	var vErr *validationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	var aErr *apiError
	if errors.As(err, &aErr) && strings.TrimSpace(aErr.Message) != "" {
		return aErr.Message
	}
	if errors.Is(err, errSubmitInFlight) {
		return errSubmitInFlight.Error()
	}
	return generic
}
