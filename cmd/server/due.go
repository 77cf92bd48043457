package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/care"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	numberStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Italic(true)
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List plants that need watering or feeding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.db.Close()

		reminders, err := a.garden.Reminders(cmd.Context())
		if err != nil {
			return err
		}
		renderReminders(stdout, reminders)
		return nil
	},
}

func renderReminders(w io.Writer, r *models.Reminders) {
	section := func(title string, plants []models.PlantResponse, last func(models.PlantResponse) *time.Time) {
		fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s (%d)", title, len(plants))))
		if len(plants) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("  nothing due"))
			return
		}
		for _, p := range plants {
			since := "never"
			if t := last(p); t != nil {
				since = fmt.Sprintf("%d days ago", care.ElapsedDays(*t, r.GeneratedAt))
			}
			fmt.Fprintf(w, "  %s %s %s\n",
				numberStyle.Render(fmt.Sprintf("#%d", p.PlantNumber)),
				nameStyle.Render(p.PersonalName),
				mutedStyle.Render(fmt.Sprintf("(%s, last %s)", p.Location, since)))
		}
	}

	section("Needs watering", r.Watering, func(p models.PlantResponse) *time.Time { return p.LastWatered })
	fmt.Fprintln(w)
	section("Needs feeding", r.Feeding, func(p models.PlantResponse) *time.Time { return p.LastFed })
}
