package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// bookingScreenKey scopes booking screen state per session AND per company, so
// switching between company booking lists never leaks pagination or modal
// state across companies.
func bookingScreenKey(sessionID, companyID string) string {
	return sessionID + "|" + companyID
}

func (a *App) dropBookingScreens(sessionKey string) {
	a.bookingScreens.dropPrefix(sessionKey + "|")
}

func (a *App) adminBookingsPageHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	companyID := strings.TrimSpace(c.Param("id"))
	state := a.bookingScreens.forSession(bookingScreenKey(session.SessionID, companyID))

	if !state.isLoaded() || c.Query("refresh") == "1" {
		generation := state.beginFetch()
		bookings, fetchErr := a.listCompanyBookings(c.Request.Context(), companyID)
		state.completeFetch(generation, bookings, fetchErr)
	}

	state.setQuery(strings.TrimSpace(c.Query("q")))
	applyPageNavigation(state, c)
	applyModalQuery(state, c)

	a.renderBookingsPage(c, session, companyID, state, http.StatusOK, "", nil)
}

// bookingRowView derives the badge and label state the list shows per row.
// Confirmation badges only appear on approved bookings that carry a price.
func bookingRowView(booking Booking) adminBookingRowView {
	row := adminBookingRowView{
		Booking:        booking,
		PriceLabel:     "Pending",
		StatusClass:    "status-" + booking.Status,
		CreatedDisplay: formatAdminTimestamp(booking.CreatedAt),
	}
	if booking.Price != nil {
		row.PriceLabel = booking.Price.StringFixed(0) + " RWF"
	}
	if booking.Status == "approved" && booking.Price != nil {
		row.ShowBadges = true
		row.PriceBadge = confirmationBadge(booking.PriceConfirmed)
		row.PaymentBadge = confirmationBadge(booking.PaymentConfirmed)
	}
	return row
}

func confirmationBadge(confirmed *bool) string {
	if confirmed != nil && *confirmed {
		return "Confirmed"
	}
	return "Awaiting"
}

func (a *App) renderBookingsPage(c *gin.Context, session AdminSession, companyID string, state *screenState[Booking], status int, formError string, draft *approvalDraft) {
	visible, info, query := state.snapshot()
	kind, targetID := state.modalSnapshot()

	rows := make([]adminBookingRowView, 0, len(visible))
	for _, booking := range visible {
		rows = append(rows, bookingRowView(booking))
	}

	var target *adminBookingRowView
	if targetID != "" {
		if found, ok := state.find(targetID); ok {
			row := bookingRowView(found)
			target = &row
		} else {
			state.closeModal()
			kind, _ = state.modalSnapshot()
		}
	}

	if draft == nil && kind == modalApprove && target != nil {
		draft = newApprovalDraft(target.ID)
	}

	var company *Company
	companyState := a.companyScreens.forSession(session.SessionID)
	if found, ok := companyState.find(companyID); ok {
		company = &found
	}

	pageURL := "/ecoadmin/companies/" + companyID + "/bookings"
	if query != "" {
		pageURL += "?q=" + url.QueryEscape(query)
	}

	base := a.adminBaseData(c, "Bookings", "companies")
	a.renderAdminTemplate(c, status, "templates/admin/bookings.tmpl", adminBookingsViewData{
		adminBaseViewData: base,
		CompanyID:         companyID,
		Company:           company,
		Bookings:          rows,
		Query:             query,
		Pagination:        buildAdminPaginationView(info, pageURL),
		Empty:             info.TotalPages == 0,
		LoadError:         state.lastLoadError(),
		ModalKind:         kind,
		Target:            target,
		FormError:         formError,
		Draft:             draft,
	})
}

func (a *App) adminBookingApproveSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	companyID := strings.TrimSpace(c.Param("id"))
	bookingID := strings.TrimSpace(c.Param("bookingID"))
	state := a.bookingScreens.forSession(bookingScreenKey(session.SessionID, companyID))

	draft := newApprovalDraft(bookingID)
	draft.Price = strings.TrimSpace(c.PostForm("price"))
	draft.Notes = strings.TrimSpace(c.PostForm("notes"))
	draft.SortedProperly = c.PostForm("sorted_properly") == "on"

	state.openModal(modalApprove, bookingID)
	submitErr := submitForm(c.Request.Context(), &state.guard, draft.validate, func(ctx context.Context) error {
		updated, callErr := a.approveBooking(ctx, bookingID, ApprovalPayload{
			Price:          draft.price,
			Notes:          draft.Notes,
			SortedProperly: draft.SortedProperly,
		})
		if callErr != nil {
			return callErr
		}
		state.upsert(*updated)
		return nil
	})
	if submitErr != nil {
		a.renderBookingsPage(c, session, companyID, state, http.StatusBadRequest, submitErrorMessage(submitErr, "Failed to approve booking"), draft)
		return
	}

	state.closeModal()
	a.notices.Push(session.SessionID, "Booking approved")
	redirectAdminWithMessage(c, "/ecoadmin/companies/"+companyID+"/bookings", "notice", "Booking approved")
}

// adminBookingsPDFHandler renders a booking summary for one company locally;
// the backend has no per-company booking report endpoint.
func (a *App) adminBookingsPDFHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	companyID := strings.TrimSpace(c.Param("id"))

	bookings, fetchErr := a.listCompanyBookings(c.Request.Context(), companyID)
	if fetchErr != nil {
		writeAPIError(c, fetchErr)
		return
	}

	companyName := companyID
	companyState := a.companyScreens.forSession(session.SessionID)
	if company, ok := companyState.find(companyID); ok {
		companyName = company.Name
	}

	data, buildErr := buildBookingsPDF(bookings, companyName)
	if buildErr != nil {
		writeAPIError(c, fmt.Errorf("build bookings report: %w", buildErr))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="bookings.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func buildBookingsPDF(bookings []Booking, companyName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Bookings - %s", companyName))

	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Total bookings: %d", len(bookings)))
	pdf.Ln(10)

	statusCounts := map[string]int{}
	approvedTotal := decimal.Zero
	for _, booking := range bookings {
		statusCounts[booking.Status]++
		if booking.Status == "approved" && booking.Price != nil {
			approvedTotal = approvedTotal.Add(*booking.Price)
		}
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Status distribution")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	statusKeys := make([]string, 0, len(statusCounts))
	for _, status := range bookingStatuses {
		if statusCounts[status] > 0 {
			statusKeys = append(statusKeys, status)
		}
	}
	extra := make([]string, 0)
	for key := range statusCounts {
		known := false
		for _, status := range bookingStatuses {
			if key == status {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	statusKeys = append(statusKeys, extra...)
	for _, key := range statusKeys {
		pdf.Cell(0, 6, fmt.Sprintf("- %s: %d", key, statusCounts[key]))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Approved volume")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%s RWF across %d approved bookings", approvedTotal.StringFixed(0), statusCounts["approved"]))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(60, 7, "Pickup date")
	pdf.Cell(40, 7, "Status")
	pdf.Cell(40, 7, "Price")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	for _, booking := range bookings {
		price := "-"
		if booking.Price != nil {
			price = booking.Price.StringFixed(0) + " RWF"
		}
		pdf.Cell(60, 6, booking.PickupDate)
		pdf.Cell(40, 6, booking.Status)
		pdf.Cell(40, 6, price)
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
