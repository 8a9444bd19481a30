// internal/app/features/dashboard/common.go
package dashboard

import (
	"github.com/dalemusser/applytrack/internal/app/system/appstats"
	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
	"github.com/dalemusser/applytrack/internal/domain/models"
)

// statCard is one clickable counter. Clicking it filters the list below.
type statCard struct {
	Key    string
	Label  string
	Count  int
	Active bool
}

// statsData feeds the "dashboard_stats" partial.
type statsData struct {
	Cards    []statCard
	Filter   string
	Filtered []models.Application
	Recent   []models.Application
	Warning  string
	Skipped  int
}

type dashboardData struct {
	viewdata.BaseVM
	Stats statsData
}

func buildCards(c appstats.StatusCounts, active string) []statCard {
	cards := []statCard{
		{Key: "total", Label: "Total Applications", Count: c.Total},
		{Key: "inProgress", Label: "In Progress", Count: c.InProgress},
		{Key: "accepted", Label: "Accepted", Count: c.Accepted},
		{Key: "rejected", Label: "Rejected", Count: c.Rejected},
	}
	for i := range cards {
		cards[i].Active = cards[i].Key == active
	}
	return cards
}
