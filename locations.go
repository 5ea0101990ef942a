package main

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// rwandaDistricts is the complete list of Rwandan districts (NISR 2023), sorted
// alphabetically.
var rwandaDistricts = []string{
	"Bugesera", "Burera", "Gakenke", "Gasabo", "Gatsibo",
	"Gicumbi", "Gisagara", "Huye", "Kamonyi", "Karongi",
	"Kayonza", "Kicukiro", "Kirehe", "Muhanga", "Musanze",
	"Ngoma", "Ngororero", "Nyabihu", "Nyagatare", "Nyamagabe",
	"Nyamasheke", "Nyanza", "Nyarugenge", "Nyaruguru", "Rubavu",
	"Ruhango", "Rulindo", "Rusizi", "Rutsiro", "Rwamagana",
}

// genericSectors is the flat sector list shown when a district has no entry in
// sectorsByDistrict. The backing data does not partition sectors for most
// districts, so this list doubles as the catch-all.
var genericSectors = []string{
	"Bumbogo", "Gatenga", "Gahanga", "Gikomero", "Gisozi",
	"Jabana", "Jali", "Kacyiru", "Kanombe", "Kagarama",
	"Kicukiro", "Kigarama", "Kimihurura", "Kimironko", "Kinyinya",
	"Masaka", "Muhima", "Ndera", "Niboye", "Nduba",
	"Nyakabanda", "Nyamirambo", "Nyarugunga", "Remera", "Rusororo",
	"Rutunga",
}

// sectorsByDistrict holds the per-district sector partitions that exist in the
// backing data. Only the Kigali City districts are partitioned; every other
// district falls back to genericSectors.
var sectorsByDistrict = map[string][]string{
	"Gasabo": {
		"Bumbogo", "Gatsata", "Gikomero", "Gisozi", "Jabana",
		"Jali", "Kacyiru", "Kimihurura", "Kimironko", "Kinyinya",
		"Ndera", "Nduba", "Remera", "Rusororo", "Rutunga",
	},
	"Kicukiro": {
		"Gahanga", "Gatenga", "Gikondo", "Kagarama", "Kanombe",
		"Kicukiro", "Kigarama", "Masaka", "Niboye", "Nyarugunga",
	},
	"Nyarugenge": {
		"Gitega", "Kanyinya", "Kigali", "Kimisagara", "Mageragere",
		"Muhima", "Nyakabanda", "Nyamirambo", "Nyarugenge", "Rwezamenyo",
	},
}

// cellsBySector holds the per-sector cell partitions that exist in the backing
// data. Sectors without an entry fall back to fallbackCells.
var cellsBySector = map[string][]string{
	"Kacyiru":    {"Kamatamu", "Kamutwa", "Kibaza"},
	"Kimihurura": {"Kamukina", "Kimihurura", "Rugando"},
	"Kimironko":  {"Bibare", "Kibagabaga", "Nyagatovu"},
	"Remera":     {"Nyabisindu", "Rukiri I", "Rukiri II"},
	"Gisozi":     {"Musezero", "Ruhango"},
	"Kinyinya":   {"Gacuriro", "Gasharu", "Kagugu", "Murama"},
	"Niboye":     {"Gatare", "Niboye", "Nyakabanda"},
	"Gatenga":    {"Gatenga", "Karambo", "Nyanza", "Nyarurama"},
	"Muhima":     {"Amahoro", "Kabasengerezi", "Kabeza", "Nyabugogo", "Rugenge", "Tetero", "Ubumwe"},
	"Nyamirambo": {"Cyivugiza", "Gasharu", "Mumena", "Rugarama"},
}

// fallbackCells is the flat cell list used for sectors with no partition. The
// backing data reuses the same list for villages, so fallbackVillages aliases
// it rather than pretending a per-cell partition exists.
var fallbackCells = []string{
	"Amahoro", "Bibare", "Gacuriro", "Gatare", "Kabeza",
	"Kagugu", "Kamatamu", "Kamutwa", "Kibagabaga", "Kibaza",
	"Musezero", "Nyabisindu", "Nyagatovu", "Rugando", "Rukiri I",
	"Rukiri II", "Ubumwe", "Umucyo", "Umurava", "Urugwiro",
}

var fallbackVillages = fallbackCells

// districtNames returns the district list in display order.
func districtNames() []string {
	names := make([]string, len(rwandaDistricts))
	copy(names, rwandaDistricts)
	return names
}

// isKnownDistrict reports whether name matches a district, ignoring case.
func isKnownDistrict(name string) bool {
	trimmed := strings.TrimSpace(name)
	for _, district := range rwandaDistricts {
		if strings.EqualFold(district, trimmed) {
			return true
		}
	}
	return false
}

// sectorsFor returns the valid sectors for a district. Districts without a
// partition get the full generic sector list.
func sectorsFor(district string) []string {
	trimmed := strings.TrimSpace(district)
	for name, sectors := range sectorsByDistrict {
		if strings.EqualFold(name, trimmed) {
			return copySorted(sectors)
		}
	}
	return copySorted(genericSectors)
}

// cellsFor returns the valid cells for a sector, falling back to the flat cell
// list when the sector has no partition.
func cellsFor(sector string) []string {
	trimmed := strings.TrimSpace(sector)
	for name, cells := range cellsBySector {
		if strings.EqualFold(name, trimmed) {
			return copySorted(cells)
		}
	}
	return copySorted(fallbackCells)
}

// villagesFor returns the village options for a cell. The backing data has no
// per-cell village partition; every cell maps to the same flat list.
func villagesFor(cell string) []string {
	_ = cell
	return copySorted(fallbackVillages)
}

func copySorted(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

// sectorBelongsToDistrict reports whether a sector is a valid choice for the
// district. Enforcement is app-level only; callers clear descendant fields on
// ancestor change themselves.
func sectorBelongsToDistrict(district, sector string) bool {
	trimmed := strings.TrimSpace(sector)
	if trimmed == "" {
		return false
	}
	for _, candidate := range sectorsFor(district) {
		if strings.EqualFold(candidate, trimmed) {
			return true
		}
	}
	return false
}

func (a *App) locationDistrictsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"districts": districtNames()})
}

func (a *App) locationSectorsHandler(c *gin.Context) {
	district := strings.TrimSpace(c.Query("district"))
	if district == "" {
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "missing_district", Message: "district is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"district": district, "sectors": sectorsFor(district)})
}

func (a *App) locationCellsHandler(c *gin.Context) {
	sector := strings.TrimSpace(c.Query("sector"))
	if sector == "" {
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "missing_sector", Message: "sector is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sector": sector, "cells": cellsFor(sector)})
}

func (a *App) locationVillagesHandler(c *gin.Context) {
	cell := strings.TrimSpace(c.Query("cell"))
	if cell == "" {
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "missing_cell", Message: "cell is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cell": cell, "villages": villagesFor(cell)})
}
