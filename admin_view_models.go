package main

import "time"

const adminDisplayTimestampLayout = "2006-01-02 15:04"

type adminBaseViewData struct {
	Title         string
	Session       *AdminSession
	CurrentPath   string
	ActiveNav     string
	ErrorMessage  string
	NoticeMessage string
	Notices       []notice
	NoticeTTL     int
	ShowBackNav   bool
}

type adminLoginViewData struct {
	adminBaseViewData
	Email string
	Next  string
}

type adminAccessDeniedViewData struct {
	adminBaseViewData
}

type adminPaginationViewData struct {
	CurrentPage   int
	TotalPages    int
	TotalCount    int
	NextPage      int
	PrevPage      int
	HasNext       bool
	HasPrev       bool
	PageURL       string
	PageSeparator string
}

type adminUsersViewData struct {
	adminBaseViewData
	Users      []User
	Query      string
	Pagination adminPaginationViewData
	Empty      bool
	LoadError  string
	ModalKind  modalKind
	Target     *User
	FormError  string
	Draft      *userDraft
	Districts  []string
	Sectors    []string
	Cells      []string
	Villages   []string
}

type adminCompaniesViewData struct {
	adminBaseViewData
	Companies  []Company
	Query      string
	Pagination adminPaginationViewData
	Empty      bool
	LoadError  string
	ModalKind  modalKind
	Target     *Company
	FormError  string
	Draft      *companyDraft
}

type adminCompanyWizardViewData struct {
	adminBaseViewData
	Draft     *companyDraft
	Step      int
	FormError string
	Districts []string
	Sectors   []string
	Cells     []string
	Villages  []string
}

type adminBookingRowView struct {
	Booking
	PriceLabel     string
	ShowBadges     bool
	PriceBadge     string
	PaymentBadge   string
	StatusClass    string
	CreatedDisplay string
}

type adminBookingsViewData struct {
	adminBaseViewData
	CompanyID  string
	Company    *Company
	Bookings   []adminBookingRowView
	Query      string
	Pagination adminPaginationViewData
	Empty      bool
	LoadError  string
	ModalKind  modalKind
	Target     *adminBookingRowView
	FormError  string
	Draft      *approvalDraft
}

type adminEventsViewData struct {
	adminBaseViewData
	Events        []CommunityEvent
	Query         string
	Pagination    adminPaginationViewData
	Empty         bool
	LoadError     string
	ModalKind     modalKind
	Target        *CommunityEvent
	FormError     string
	Draft         *eventDraft
	TomorrowCount int
	Districts     []string
}

type adminMaterialsViewData struct {
	adminBaseViewData
	Materials  []EducationMaterial
	Query      string
	Pagination adminPaginationViewData
	Empty      bool
	LoadError  string
	ModalKind  modalKind
	Target     *EducationMaterial
	FormError  string
	Draft      *materialDraft
}

func formatAdminTimestamp(raw string) string {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return parsed.In(adminTimeLocation()).Format(adminDisplayTimestampLayout)
}

var adminTimeZone *time.Location

func adminTimeLocation() *time.Location {
	if adminTimeZone != nil {
		return adminTimeZone
	}
	location, err := time.LoadLocation("Africa/Kigali")
	if err != nil {
		adminTimeZone = time.UTC
		return adminTimeZone
	}
	adminTimeZone = location
	return adminTimeZone
}
