package categorization

import (
	"strings"

	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

// Fixed cascade thresholds, in minutes. Detection deliberately uses strict
// comparisons; the grading standards use inclusive ones.
const (
	lobbySlowKitchenMinutes = 15.0
	lobbySlowOrderMinutes   = 20.0
	driveFastKitchenMinutes = 7.0
	driveFastOrderMinutes   = 10.0
)

// Rule names recorded in the run metadata, one counter per fired rule.
const (
	ruleLobbyMultiTable   = "lobby_multi_table"
	ruleLobbyServerTable  = "lobby_server_position"
	ruleLobbySlowService  = "lobby_slow_service"
	ruleDriveThruDrawer   = "drive_thru_drawer"
	ruleDriveThruPosition = "drive_thru_position"
	ruleDriveThruKitchen  = "drive_thru_fast_kitchen"
	ruleDriveThruOrder    = "drive_thru_fast_order"
	ruleToGoDefault       = "togo_default"
)

// signals is the fused per-check view assembled from kitchen, eod, orders,
// and the time entries.
type signals struct {
	check          string
	tableCount     int
	table          string
	cashDrawer     string
	position       string
	server         string
	kitchenMinutes float64
	orderMinutes   float64
}

// classify runs the filter cascade and returns the winning category plus
// the name of the rule that fired. Rules short-circuit in order, so every
// check lands in exactly one category.
func classify(sig signals) (domain.Category, string) {
	switch {
	case sig.tableCount >= 2:
		return domain.CategoryLobby, ruleLobbyMultiTable
	case sig.tableCount >= 1 && strings.Contains(sig.position, "server"):
		return domain.CategoryLobby, ruleLobbyServerTable
	case sig.tableCount >= 1 && (sig.kitchenMinutes > lobbySlowKitchenMinutes || sig.orderMinutes > lobbySlowOrderMinutes):
		return domain.CategoryLobby, ruleLobbySlowService
	case strings.Contains(sig.cashDrawer, "drive box") || strings.Contains(sig.cashDrawer, "drive"):
		return domain.CategoryDriveThru, ruleDriveThruDrawer
	case strings.Contains(sig.position, "drive"):
		return domain.CategoryDriveThru, ruleDriveThruPosition
	case sig.tableCount == 0 && sig.kitchenMinutes > 0 && sig.kitchenMinutes < driveFastKitchenMinutes:
		return domain.CategoryDriveThru, ruleDriveThruKitchen
	case sig.tableCount == 0 && sig.orderMinutes > 0 && sig.orderMinutes < driveFastOrderMinutes:
		return domain.CategoryDriveThru, ruleDriveThruOrder
	default:
		return domain.CategoryToGo, ruleToGoDefault
	}
}
