package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

func (a *App) adminUsersPageHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	state := a.userScreens.forSession(session.SessionID)

	if !state.isLoaded() || c.Query("refresh") == "1" {
		generation := state.beginFetch()
		users, fetchErr := a.listUsers(c.Request.Context())
		state.completeFetch(generation, users, fetchErr)
	}

	state.setQuery(strings.TrimSpace(c.Query("q")))
	applyPageNavigation(state, c)
	applyModalQuery(state, c)

	a.renderUsersPage(c, state, http.StatusOK, "", nil)
}

// applyPageNavigation maps the page controls onto the list view: explicit
// page links clamp via GoTo, nav=next/prev are boundary no-ops.
func applyPageNavigation[T any](state *screenState[T], c *gin.Context) {
	switch c.Query("nav") {
	case "next":
		state.next()
	case "prev":
		state.prev()
	default:
		if raw := strings.TrimSpace(c.Query("page")); raw != "" {
			state.goTo(parseAdminPage(raw))
		}
	}
}

// applyModalQuery drives the modal state machine from the URL: a modal param
// opens that dialog (closing any other), its absence closes whatever is open.
func applyModalQuery[T any](state *screenState[T], c *gin.Context) {
	raw := strings.TrimSpace(c.Query("modal"))
	if raw == "" {
		state.closeModal()
		return
	}
	if !state.openModal(modalKind(raw), strings.TrimSpace(c.Query("id"))) {
		state.closeModal()
	}
}

func (a *App) renderUsersPage(c *gin.Context, state *screenState[User], status int, formError string, draft *userDraft) {
	visible, info, query := state.snapshot()
	kind, targetID := state.modalSnapshot()

	var target *User
	if targetID != "" {
		if found, ok := state.find(targetID); ok {
			target = &found
		} else {
			state.closeModal()
			kind, _ = state.modalSnapshot()
		}
	}

	if draft == nil {
		switch kind {
		case modalCreate:
			draft = newUserDraft()
		case modalEdit:
			if target != nil {
				draft = editUserDraft(*target)
			}
		}
	}

	sectors := []string{}
	cells := []string{}
	villages := []string{}
	if draft != nil {
		if draft.Location.District != "" {
			sectors = sectorsFor(draft.Location.District)
		}
		if draft.Location.Sector != "" {
			cells = cellsFor(draft.Location.Sector)
		}
		if draft.Location.Cell != "" {
			villages = villagesFor(draft.Location.Cell)
		}
	}

	pageURL := "/ecoadmin/users"
	if query != "" {
		pageURL += "?q=" + url.QueryEscape(query)
	}

	base := a.adminBaseData(c, "Users", "users")
	a.renderAdminTemplate(c, status, "templates/admin/users.tmpl", adminUsersViewData{
		adminBaseViewData: base,
		Users:             visible,
		Query:             query,
		Pagination:        buildAdminPaginationView(info, pageURL),
		Empty:             info.TotalPages == 0,
		LoadError:         state.lastLoadError(),
		ModalKind:         kind,
		Target:            target,
		FormError:         formError,
		Draft:             draft,
		Districts:         districtNames(),
		Sectors:           sectors,
		Cells:             cells,
		Villages:          villages,
	})
}

func userDraftFromForm(c *gin.Context, mode formMode, id string) *userDraft {
	draft := &userDraft{
		Mode:            mode,
		ID:              id,
		FullName:        strings.TrimSpace(c.PostForm("full_name")),
		Email:           strings.TrimSpace(c.PostForm("email")),
		Phone:           strings.TrimSpace(c.PostForm("phone")),
		Role:            strings.TrimSpace(c.PostForm("role")),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
	}
	draft.Location.SetDistrict(c.PostForm("district"))
	draft.Location.SetSector(c.PostForm("sector"))
	draft.Location.SetCell(c.PostForm("cell"))
	draft.Location.SetVillage(c.PostForm("village"))
	draft.Location.SetStreet(c.PostForm("street"))
	return draft
}

func userPayloadFromDraft(draft *userDraft) UserPayload {
	return UserPayload{
		FullName: draft.FullName,
		Email:    draft.Email,
		Phone:    draft.Phone,
		Role:     draft.Role,
		Password: draft.Password,
		District: draft.Location.District,
		Sector:   draft.Location.Sector,
		Cell:     draft.Location.Cell,
		Village:  draft.Location.Village,
		Street:   draft.Location.Street,
	}
}

func (a *App) adminUserCreateSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	state := a.userScreens.forSession(session.SessionID)
	draft := userDraftFromForm(c, formModeCreate, "")

	state.openModal(modalCreate, "")
	submitErr := submitForm(c.Request.Context(), &state.guard, draft.validate, func(ctx context.Context) error {
		created, callErr := a.createUser(ctx, userPayloadFromDraft(draft))
		if callErr != nil {
			return callErr
		}
		state.upsert(*created)
		return nil
	})
	if submitErr != nil {
		a.renderUsersPage(c, state, http.StatusBadRequest, submitErrorMessage(submitErr, "Failed to create user"), draft)
		return
	}

	state.closeModal()
	a.notices.Push(session.SessionID, "User created")
	redirectAdminWithMessage(c, "/ecoadmin/users", "notice", "User created")
}

func (a *App) adminUserEditSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	state := a.userScreens.forSession(session.SessionID)
	draft := userDraftFromForm(c, formModeEdit, id)

	state.openModal(modalEdit, id)
	submitErr := submitForm(c.Request.Context(), &state.guard, draft.validate, func(ctx context.Context) error {
		updated, callErr := a.updateUser(ctx, id, userPayloadFromDraft(draft))
		if callErr != nil {
			return callErr
		}
		state.upsert(*updated)
		return nil
	})
	if submitErr != nil {
		a.renderUsersPage(c, state, http.StatusBadRequest, submitErrorMessage(submitErr, "Failed to update user"), draft)
		return
	}

	state.closeModal()
	a.notices.Push(session.SessionID, "User updated")
	redirectAdminWithMessage(c, "/ecoadmin/users", "notice", "User updated")
}

func (a *App) adminUserDeleteSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	state := a.userScreens.forSession(session.SessionID)

	if deleteErr := a.deleteUser(c.Request.Context(), id); deleteErr != nil {
		state.openModal(modalDelete, id)
		a.renderUsersPage(c, state, http.StatusBadGateway, submitErrorMessage(deleteErr, "Failed to delete user"), nil)
		return
	}

	state.remove(id)
	state.closeModal()
	a.notices.Push(session.SessionID, "User deleted")
	redirectAdminWithMessage(c, "/ecoadmin/users", "notice", "User deleted")
}

// adminUsersPDFHandler streams the backend-rendered users report through
// unchanged.
func (a *App) adminUsersPDFHandler(c *gin.Context) {
	data, contentType, err := a.usersPDF(c.Request.Context())
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="users.pdf"`)
	c.Data(http.StatusOK, contentType, data)
}
