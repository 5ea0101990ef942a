package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

func (a *App) adminMaterialsPageHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	state := a.materialScreens.forSession(session.SessionID)

	if !state.isLoaded() || c.Query("refresh") == "1" {
		generation := state.beginFetch()
		materials, fetchErr := a.listMaterials(c.Request.Context())
		state.completeFetch(generation, materials, fetchErr)
	}

	state.setQuery(strings.TrimSpace(c.Query("q")))
	applyPageNavigation(state, c)
	applyModalQuery(state, c)

	a.renderMaterialsPage(c, state, http.StatusOK, "", nil)
}

func (a *App) renderMaterialsPage(c *gin.Context, state *screenState[EducationMaterial], status int, formError string, draft *materialDraft) {
	visible, info, query := state.snapshot()
	kind, targetID := state.modalSnapshot()

	var target *EducationMaterial
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
			draft = newMaterialDraft()
		case modalEdit:
			if target != nil {
				draft = editMaterialDraft(*target)
			}
		}
	}

	pageURL := "/ecoadmin/materials"
	if query != "" {
		pageURL += "?q=" + url.QueryEscape(query)
	}

	base := a.adminBaseData(c, "Education materials", "materials")
	a.renderAdminTemplate(c, status, "templates/admin/materials.tmpl", adminMaterialsViewData{
		adminBaseViewData: base,
		Materials:         visible,
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

func materialDraftFromForm(c *gin.Context, mode formMode, id string) *materialDraft {
	return &materialDraft{
		Mode:        mode,
		ID:          id,
		Title:       strings.TrimSpace(c.PostForm("title")),
		Category:    strings.TrimSpace(c.PostForm("category")),
		Description: strings.TrimSpace(c.PostForm("description")),
		ContentURL:  strings.TrimSpace(c.PostForm("content_url")),
	}
}

func materialPayloadFromDraft(draft *materialDraft) MaterialPayload {
	return MaterialPayload{
		Title:       draft.Title,
		Category:    draft.Category,
		Description: draft.Description,
		ContentURL:  draft.ContentURL,
	}
}

func (a *App) adminMaterialCreateSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	state := a.materialScreens.forSession(session.SessionID)
	draft := materialDraftFromForm(c, formModeCreate, "")

	state.openModal(modalCreate, "")
	submitErr := submitForm(c.Request.Context(), &state.guard, draft.validate, func(ctx context.Context) error {
		created, callErr := a.createMaterial(ctx, materialPayloadFromDraft(draft))
		if callErr != nil {
			return callErr
		}
		state.upsert(*created)
		return nil
	})
	if submitErr != nil {
		a.renderMaterialsPage(c, state, http.StatusBadRequest, submitErrorMessage(submitErr, "Failed to create material"), draft)
		return
	}

	state.closeModal()
	a.notices.Push(session.SessionID, "Material created")
	redirectAdminWithMessage(c, "/ecoadmin/materials", "notice", "Material created")
}

func (a *App) adminMaterialEditSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	state := a.materialScreens.forSession(session.SessionID)
	draft := materialDraftFromForm(c, formModeEdit, id)

	state.openModal(modalEdit, id)
	submitErr := submitForm(c.Request.Context(), &state.guard, draft.validate, func(ctx context.Context) error {
		updated, callErr := a.updateMaterial(ctx, id, materialPayloadFromDraft(draft))
		if callErr != nil {
			return callErr
		}
		state.upsert(*updated)
		return nil
	})
	if submitErr != nil {
		a.renderMaterialsPage(c, state, http.StatusBadRequest, submitErrorMessage(submitErr, "Failed to update material"), draft)
		return
	}

	state.closeModal()
	a.notices.Push(session.SessionID, "Material updated")
	redirectAdminWithMessage(c, "/ecoadmin/materials", "notice", "Material updated")
}

func (a *App) adminMaterialDeleteSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	state := a.materialScreens.forSession(session.SessionID)

	if deleteErr := a.deleteMaterial(c.Request.Context(), id); deleteErr != nil {
		state.openModal(modalDelete, id)
		a.renderMaterialsPage(c, state, http.StatusBadGateway, submitErrorMessage(deleteErr, "Failed to delete material"), nil)
		return
	}

	state.remove(id)
	state.closeModal()
	a.notices.Push(session.SessionID, "Material deleted")
	redirectAdminWithMessage(c, "/ecoadmin/materials", "notice", "Material deleted")
}
