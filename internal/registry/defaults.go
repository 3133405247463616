package registry

import (
	"fmt"

	"github.com/nhle/timesheet/internal/model"
)

// starterProjects is seeded on first run.
var starterProjects = []struct {
	name        string
	subprojects [3]string
}{
	{"Website Redesign", [3]string{"Wireframing", "UI Implementation", "Accessibility Review"}},
	{"Mobile App Launch", [3]string{"iOS Build", "Android Build", "App Store Submission"}},
	{"Marketing Campaign", [3]string{"Content Creation", "Social Media Ads", "Email Blasts"}},
	{"Data Analytics Platform", [3]string{"ETL Pipeline", "Dashboard UI", "Reporting Engine"}},
	{"E-commerce Store", [3]string{"Product Catalog", "Checkout Flow", "Order Management"}},
	{"HR Onboarding", [3]string{"Document Collection", "Orientation", "Training Sessions"}},
	{"Cloud Migration", [3]string{"Infrastructure Setup", "Data Transfer", "Performance Testing"}},
	{"Customer Support Portal", [3]string{"Ticketing System", "Knowledge Base", "Live Chat"}},
	{"SEO Optimization", [3]string{"Keyword Research", "On-page SEO", "Backlink Building"}},
	{"Internal Tools", [3]string{"Time Tracking", "Expense Reports", "Resource Planning"}},
	{"Product Launch", [3]string{"Beta Testing", "Press Release", "Launch Event"}},
	{"API Development", [3]string{"REST Endpoints", "Authentication", "Rate Limiting"}},
	{"Security Audit", [3]string{"Vulnerability Scan", "Penetration Testing", "Compliance Review"}},
	{"Conference Planning", [3]string{"Venue Booking", "Speaker Outreach", "Agenda Design"}},
	{"User Research", [3]string{"Surveys", "User Interviews", "Usability Testing"}},
}

// DefaultProjects returns the starter project set with ids "1".."15" and
// subproject ids "<project>-1".."<project>-3".
func DefaultProjects() []model.Project {
	projects := make([]model.Project, 0, len(starterProjects))
	for i, sp := range starterProjects {
		pid := fmt.Sprintf("%d", i+1)
		p := model.Project{ID: pid, Name: sp.name}
		for j, name := range sp.subprojects {
			p.Subprojects = append(p.Subprojects, model.Subproject{
				ID:   fmt.Sprintf("%s-%d", pid, j+1),
				Name: name,
			})
		}
		projects = append(projects, p)
	}
	return projects
}
