package main

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const companyWizardSteps = 3

// companyWizardStore holds the in-progress registration draft per admin
// session. The wizard spans multiple requests, so the draft lives outside the
// screen state and survives navigation between steps.
type companyWizardStore struct {
	mu     sync.Mutex
	drafts map[string]*companyDraft
	steps  map[string]int
}

func newCompanyWizardStore() *companyWizardStore {
	return &companyWizardStore{
		drafts: make(map[string]*companyDraft),
		steps:  make(map[string]int),
	}
}

func (w *companyWizardStore) forSession(sessionKey string) (*companyDraft, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	draft, ok := w.drafts[sessionKey]
	if !ok {
		draft = newCompanyDraft()
		w.drafts[sessionKey] = draft
		w.steps[sessionKey] = 1
	}
	return draft, w.steps[sessionKey]
}

func (w *companyWizardStore) setStep(sessionKey string, step int) {
	if step < 1 {
		step = 1
	}
	if step > companyWizardSteps {
		step = companyWizardSteps
	}
	w.mu.Lock()
	w.steps[sessionKey] = step
	w.mu.Unlock()
}

func (w *companyWizardStore) drop(sessionKey string) {
	w.mu.Lock()
	delete(w.drafts, sessionKey)
	delete(w.steps, sessionKey)
	w.mu.Unlock()
}

func (a *App) dropCompanyWizard(sessionKey string) {
	a.companyWizards.drop(sessionKey)
}

func (a *App) adminCompaniesPageHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	state := a.companyScreens.forSession(session.SessionID)

	if !state.isLoaded() || c.Query("refresh") == "1" {
		generation := state.beginFetch()
		companies, fetchErr := a.listCompanies(c.Request.Context())
		state.completeFetch(generation, companies, fetchErr)
	}

	state.setQuery(strings.TrimSpace(c.Query("q")))
	applyPageNavigation(state, c)
	applyModalQuery(state, c)

	a.renderCompaniesPage(c, state, http.StatusOK, "", nil)
}

func (a *App) renderCompaniesPage(c *gin.Context, state *screenState[Company], status int, formError string, draft *companyDraft) {
	visible, info, query := state.snapshot()
	kind, targetID := state.modalSnapshot()

	var target *Company
	if targetID != "" {
		if found, ok := state.find(targetID); ok {
			target = &found
		} else {
			state.closeModal()
			kind, _ = state.modalSnapshot()
		}
	}

	if draft == nil && kind == modalEdit && target != nil {
		draft = editCompanyDraft(*target)
	}

	pageURL := "/ecoadmin/companies"
	if query != "" {
		pageURL += "?q=" + url.QueryEscape(query)
	}

	base := a.adminBaseData(c, "Companies", "companies")
	a.renderAdminTemplate(c, status, "templates/admin/companies.tmpl", adminCompaniesViewData{
		adminBaseViewData: base,
		Companies:         visible,
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

func (a *App) adminCompanyRegisterPageHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	if c.Query("reset") == "1" {
		a.companyWizards.drop(session.SessionID)
	}
	draft, step := a.companyWizards.forSession(session.SessionID)
	a.renderCompanyWizard(c, draft, step, http.StatusOK, "")
}

func (a *App) renderCompanyWizard(c *gin.Context, draft *companyDraft, step int, status int, formError string) {
	sectors := []string{}
	cells := []string{}
	villages := []string{}
	if draft.Location.District != "" {
		sectors = sectorsFor(draft.Location.District)
	}
	if draft.Location.Sector != "" {
		cells = cellsFor(draft.Location.Sector)
	}
	if draft.Location.Cell != "" {
		villages = villagesFor(draft.Location.Cell)
	}

	base := a.adminBaseData(c, "Register company", "companies")
	a.renderAdminTemplate(c, status, "templates/admin/company_register.tmpl", adminCompanyWizardViewData{
		adminBaseViewData: base,
		Draft:             draft,
		Step:              step,
		FormError:         formError,
		Districts:         districtNames(),
		Sectors:           sectors,
		Cells:             cells,
		Villages:          villages,
	})
}

func applyCompanyDetailsStep(draft *companyDraft, c *gin.Context) {
	draft.Name = strings.TrimSpace(c.PostForm("name"))
	draft.Email = strings.TrimSpace(c.PostForm("email"))
	draft.Phone = strings.TrimSpace(c.PostForm("phone"))
	draft.WasteTypes = nil
	for _, wasteType := range c.PostFormArray("waste_types") {
		if trimmed := strings.TrimSpace(wasteType); trimmed != "" {
			draft.WasteTypes = append(draft.WasteTypes, trimmed)
		}
	}
}

func applyCompanyLocationStep(draft *companyDraft, c *gin.Context) {
	draft.Location.SetDistrict(c.PostForm("district"))
	draft.Location.SetSector(c.PostForm("sector"))
	draft.Location.SetCell(c.PostForm("cell"))
	draft.Location.SetVillage(c.PostForm("village"))
	draft.Location.SetStreet(c.PostForm("street"))
}

// adminCompanyRegisterSubmitHandler advances the wizard. Steps 1 and 2
// accumulate into the session draft; the final step validates the whole draft
// and submits it to the backend.
func (a *App) adminCompanyRegisterSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	draft, _ := a.companyWizards.forSession(session.SessionID)
	step, convErr := strconv.Atoi(c.PostForm("step"))
	if convErr != nil {
		step = 1
	}

	if c.PostForm("action") == "back" {
		a.companyWizards.setStep(session.SessionID, step-1)
		c.Redirect(http.StatusSeeOther, "/ecoadmin/companies/register")
		return
	}

	switch step {
	case 1:
		applyCompanyDetailsStep(draft, c)
		a.companyWizards.setStep(session.SessionID, 2)
		c.Redirect(http.StatusSeeOther, "/ecoadmin/companies/register")
		return
	case 2:
		applyCompanyLocationStep(draft, c)
		a.companyWizards.setStep(session.SessionID, 3)
		c.Redirect(http.StatusSeeOther, "/ecoadmin/companies/register")
		return
	}

	state := a.companyScreens.forSession(session.SessionID)
	submitErr := submitForm(c.Request.Context(), &state.guard, draft.validate, func(ctx context.Context) error {
		created, callErr := a.registerCompany(ctx, companyPayloadFromDraft(draft))
		if callErr != nil {
			return callErr
		}
		state.upsert(*created)
		return nil
	})
	if submitErr != nil {
		a.renderCompanyWizard(c, draft, companyWizardSteps, http.StatusBadRequest, submitErrorMessage(submitErr, "Failed to register company"))
		return
	}

	a.companyWizards.drop(session.SessionID)
	a.notices.Push(session.SessionID, "Company registered")
	redirectAdminWithMessage(c, "/ecoadmin/companies", "notice", "Company registered")
}

func companyDraftFromForm(c *gin.Context, mode formMode, id string) *companyDraft {
	draft := &companyDraft{Mode: mode, ID: id}
	applyCompanyDetailsStep(draft, c)
	applyCompanyLocationStep(draft, c)
	return draft
}

func companyPayloadFromDraft(draft *companyDraft) CompanyPayload {
	return CompanyPayload{
		Name:       draft.Name,
		Email:      draft.Email,
		Phone:      draft.Phone,
		WasteTypes: draft.WasteTypes,
		District:   draft.Location.District,
		Sector:     draft.Location.Sector,
		Cell:       draft.Location.Cell,
		Village:    draft.Location.Village,
		Street:     draft.Location.Street,
	}
}

func (a *App) adminCompanyEditSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	state := a.companyScreens.forSession(session.SessionID)
	draft := companyDraftFromForm(c, formModeEdit, id)

	state.openModal(modalEdit, id)
	submitErr := submitForm(c.Request.Context(), &state.guard, draft.validate, func(ctx context.Context) error {
		updated, callErr := a.updateCompany(ctx, id, companyPayloadFromDraft(draft))
		if callErr != nil {
			return callErr
		}
		state.upsert(*updated)
		return nil
	})
	if submitErr != nil {
		a.renderCompaniesPage(c, state, http.StatusBadRequest, submitErrorMessage(submitErr, "Failed to update company"), draft)
		return
	}

	state.closeModal()
	a.notices.Push(session.SessionID, "Company updated")
	redirectAdminWithMessage(c, "/ecoadmin/companies", "notice", "Company updated")
}

func (a *App) adminCompanyDeleteSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	state := a.companyScreens.forSession(session.SessionID)

	if deleteErr := a.deleteCompany(c.Request.Context(), id); deleteErr != nil {
		state.openModal(modalDelete, id)
		a.renderCompaniesPage(c, state, http.StatusBadGateway, submitErrorMessage(deleteErr, "Failed to delete company"), nil)
		return
	}

	state.remove(id)
	state.closeModal()
	a.notices.Push(session.SessionID, "Company deleted")
	redirectAdminWithMessage(c, "/ecoadmin/companies", "notice", "Company deleted")
}
