// syllabusctl uploads a syllabus to the extraction service, prints live
// progress, and can persist the extracted assignments.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/coursedeck/syllabus-extractor/internal/models"
	"github.com/coursedeck/syllabus-extractor/pkg/client"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "extraction service base URL")
	file := flag.String("file", "", "syllabus file to upload (pdf, docx or txt)")
	approve := flag.Bool("approve", false, "persist all extracted assignments after extraction")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *file, err)
	}
	defer f.Close()

	c := client.New(*server)
	ctx := context.Background()

	var preview client.Preview
	result, err := c.ExtractSyllabus(ctx, filepath.Base(*file), f, func(stage, message string, partial *models.SyllabusStructure) {
		if message != "" {
			fmt.Printf("[%s] %s\n", stage, message)
		}
		if partial != nil {
			preview.Apply(*partial)
			current := preview.Current()
			fmt.Printf("[%s] preview: %s, %d assignments\n", stage, current.Course, len(current.Assignments))
		}
	})
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}

	fmt.Printf("\nCourse: %s\n", result.Course)
	for _, a := range result.Assignments {
		due := a.DueDate
		if a.DueTime != nil {
			due += " " + *a.DueTime
		}
		fmt.Printf("  %-40s due %s\n", a.Name, due)
	}

	if !*approve {
		return
	}

	resp, err := c.ApproveAssignments(ctx, result.Course, result.Assignments)
	if err != nil {
		log.Fatalf("approve failed: %v", err)
	}
	fmt.Printf("\nSaved %d assignments\n", resp.Count)
	for _, e := range resp.Errors {
		fmt.Printf("  skipped: %s\n", e)
	}
	if !resp.Success {
		log.Fatalf("approve failed: %s", resp.Error)
	}
}
