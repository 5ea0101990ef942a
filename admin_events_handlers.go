package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

func (a *App) adminEventsPageHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	state := a.eventScreens.forSession(session.SessionID)

	if !state.isLoaded() || c.Query("refresh") == "1" {
		generation := state.beginFetch()
		events, fetchErr := a.listEvents(c.Request.Context())
		state.completeFetch(generation, events, fetchErr)
	}

	state.setQuery(strings.TrimSpace(c.Query("q")))
	applyPageNavigation(state, c)
	applyModalQuery(state, c)

	tomorrowCount := 0
	if count, countErr := a.tomorrowEventCount(c.Request.Context()); countErr == nil {
		tomorrowCount = count
	}

	a.renderEventsPage(c, state, tomorrowCount, http.StatusOK, "", nil)
}

func (a *App) renderEventsPage(c *gin.Context, state *screenState[CommunityEvent], tomorrowCount, status int, formError string, draft *eventDraft) {
	visible, info, query := state.snapshot()
	kind, targetID := state.modalSnapshot()

	var target *CommunityEvent
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
			draft = newEventDraft()
		case modalEdit:
			if target != nil {
				draft = editEventDraft(*target)
			}
		}
	}

	pageURL := "/ecoadmin/events"
	if query != "" {
		pageURL += "?q=" + url.QueryEscape(query)
	}

	base := a.adminBaseData(c, "Community events", "events")
	a.renderAdminTemplate(c, status, "templates/admin/events.tmpl", adminEventsViewData{
		adminBaseViewData: base,
		Events:            visible,
		Query:             query,
		Pagination:        buildAdminPaginationView(info, pageURL),
		Empty:             info.TotalPages == 0,
		LoadError:         state.lastLoadError(),
		ModalKind:         kind,
		Target:            target,
		FormError:         formError,
		Draft:             draft,
		TomorrowCount:     tomorrowCount,
		Districts:         districtNames(),
	})
}

func eventDraftFromForm(c *gin.Context, mode formMode, id string) *eventDraft {
	draft := &eventDraft{
		Mode:        mode,
		ID:          id,
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
		EventDate:   strings.TrimSpace(c.PostForm("event_date")),
		StartTime:   strings.TrimSpace(c.PostForm("start_time")),
	}
	draft.Location.SetDistrict(c.PostForm("district"))
	draft.Location.SetSector(c.PostForm("sector"))
	return draft
}

func eventPayloadFromDraft(draft *eventDraft) EventPayload {
	return EventPayload{
		Title:       draft.Title,
		Description: draft.Description,
		EventDate:   draft.EventDate,
		StartTime:   draft.StartTime,
		District:    draft.Location.District,
		Sector:      draft.Location.Sector,
	}
}

func (a *App) adminEventCreateSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	state := a.eventScreens.forSession(session.SessionID)
	draft := eventDraftFromForm(c, formModeCreate, "")

	state.openModal(modalCreate, "")
	submitErr := submitForm(c.Request.Context(), &state.guard, draft.validate, func(ctx context.Context) error {
		created, callErr := a.createEvent(ctx, eventPayloadFromDraft(draft))
		if callErr != nil {
			return callErr
		}
		state.upsert(*created)
		return nil
	})
	if submitErr != nil {
		a.renderEventsPage(c, state, 0, http.StatusBadRequest, submitErrorMessage(submitErr, "Failed to create event"), draft)
		return
	}

	state.closeModal()
	a.notices.Push(session.SessionID, "Event created")
	redirectAdminWithMessage(c, "/ecoadmin/events", "notice", "Event created")
}

func (a *App) adminEventEditSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	state := a.eventScreens.forSession(session.SessionID)
	draft := eventDraftFromForm(c, formModeEdit, id)

	state.openModal(modalEdit, id)
	submitErr := submitForm(c.Request.Context(), &state.guard, draft.validate, func(ctx context.Context) error {
		updated, callErr := a.updateEvent(ctx, id, eventPayloadFromDraft(draft))
		if callErr != nil {
			return callErr
		}
		state.upsert(*updated)
		return nil
	})
	if submitErr != nil {
		a.renderEventsPage(c, state, 0, http.StatusBadRequest, submitErrorMessage(submitErr, "Failed to update event"), draft)
		return
	}

	state.closeModal()
	a.notices.Push(session.SessionID, "Event updated")
	redirectAdminWithMessage(c, "/ecoadmin/events", "notice", "Event updated")
}

func (a *App) adminEventDeleteSubmitHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	state := a.eventScreens.forSession(session.SessionID)

	if deleteErr := a.deleteEvent(c.Request.Context(), id); deleteErr != nil {
		state.openModal(modalDelete, id)
		a.renderEventsPage(c, state, 0, http.StatusBadGateway, submitErrorMessage(deleteErr, "Failed to delete event"), nil)
		return
	}

	state.remove(id)
	state.closeModal()
	a.notices.Push(session.SessionID, "Event deleted")
	redirectAdminWithMessage(c, "/ecoadmin/events", "notice", "Event deleted")
}
