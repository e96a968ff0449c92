package domain

// PanelView identifies which auxiliary UI surface is active. At most one is
// active at a time.
type PanelView string

const (
	// PanelNone — no auxiliary panel.
	PanelNone PanelView = "none"
	// PanelRegionBrowser — the destination drill-down browser.
	PanelRegionBrowser PanelView = "region-browser"
	// PanelSiteDetail — the single-site detail panel.
	PanelSiteDetail PanelView = "site-detail"
)

// DerivePanelView is the single precedence rule coupling the panel view to
// its inputs: a selected site wins, then an active region filter, then
// nothing. Every store action that changes either input goes through this
// function so the rule cannot drift between actions.
func DerivePanelView(selectedSiteID, region string) PanelView {
	switch {
	case selectedSiteID != "":
		return PanelSiteDetail
	case region != "":
		return PanelRegionBrowser
	default:
		return PanelNone
	}
}
