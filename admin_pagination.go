package main

import (
	"strconv"
	"strings"
)

const (
	adminDefaultPage    = 1
	adminDefaultPerPage = 10
)

func parseAdminPage(rawPage string) int {
	page, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil || page < adminDefaultPage {
		return adminDefaultPage
	}
	return page
}

func buildAdminPaginationView(info pageInfo, pageURL string) adminPaginationViewData {
	pageSeparator := "?"
	if strings.Contains(pageURL, "?") {
		pageSeparator = "&"
	}

	return adminPaginationViewData{
		CurrentPage:   info.CurrentPage,
		TotalPages:    info.TotalPages,
		TotalCount:    info.FilteredCount,
		NextPage:      info.CurrentPage + 1,
		PrevPage:      info.CurrentPage - 1,
		HasNext:       info.CurrentPage < info.TotalPages,
		HasPrev:       info.CurrentPage > adminDefaultPage,
		PageURL:       pageURL,
		PageSeparator: pageSeparator,
	}
}
