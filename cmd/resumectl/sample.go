package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"resume-enhancer/resume/model"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a sample ResumeDocument JSON file",
	RunE:  runSample,
}

var sampleOut string

func init() {
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "./out/sample_resume.json", "Output path")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, _ []string) error {
	payload, err := json.MarshalIndent(sampleDocument(), "", "  ")
	if err != nil {
		return err
	}
	if err := writeFile(sampleOut, append(payload, '\n')); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "OK: wrote %s\n", sampleOut)
	return nil
}

func sampleDocument() model.ResumeDocument {
	return model.ResumeDocument{
		Name:        "Jordan Lee",
		ContactInfo: "jordan.lee@example.com | +1-555-0102 | Austin, TX | github.com/jordanlee",
		Summary: "Backend engineer with 8+ years of experience building resilient APIs and data services. " +
			"Led platform modernization spanning cloud migration and observability adoption.",
		Skills: []string{"Go", "Java", "Gin", "PostgreSQL", "Redis", "AWS", "Docker", "Kubernetes", "OpenTelemetry", "Terraform"},
		Experience: []model.ExperienceEntry{
			{
				Title:    "Senior Backend Engineer",
				Company:  "Acme Logistics",
				Location: "Austin, TX",
				Duration: "2021 - Present",
				Responsibilities: []string{
					"Designed a routing service that reduced shipment latency by 18%.",
					"Implemented distributed tracing to cut incident triage time by 35%.",
				},
			},
			{
				Title:    "Backend Engineer",
				Company:  "Blue Harbor Systems",
				Location: "Seattle, WA",
				Duration: "2018 - 2021",
				Responsibilities: []string{
					"Built event-driven ingestion pipelines for compliance data feeds.",
				},
			},
		},
		Education: []model.EducationEntry{
			{Degree: "B.S. Computer Science", Institution: "University of Washington", GraduationYear: "2017"},
		},
		SelectedProjects: []string{
			"Open-source rate limiter for Gin with token buckets per route group.",
		},
	}
}
