package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

const bannerArt = `
███████╗██████╗ ██╗   ██╗███╗   ███╗ █████╗ ███████╗████████╗███████╗██████╗
██╔════╝██╔══██╗██║   ██║████╗ ████║██╔══██╗██╔════╝╚══██╔══╝██╔════╝██╔══██╗
█████╗  ██║  ██║██║   ██║██╔████╔██║███████║███████╗   ██║   █████╗  ██████╔╝
██╔══╝  ██║  ██║██║   ██║██║╚██╔╝██║██╔══██║╚════██║   ██║   ██╔══╝  ██╔══██╗
███████╗██████╔╝╚██████╔╝██║ ╚═╝ ██║██║  ██║███████║   ██║   ███████╗██║  ██║
╚══════╝╚═════╝  ╚═════╝ ╚═╝     ╚═╝╚═╝  ╚═╝╚══════╝   ╚═╝   ╚══════╝╚═╝  ╚═╝`

// bannerWidth is the column count of bannerArt.
const bannerWidth = 77

const bannerCompact = "E D U M A S T E R"

// RenderBanner returns the EduMaster banner styled in the primary color.
// Uses a compact fallback for terminals narrower than the art.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth+2 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
