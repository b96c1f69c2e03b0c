package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"talentflow-assessments/internal/builder"
	"talentflow-assessments/internal/domain"
	"talentflow-assessments/internal/validation"
)

// NewValidateCmd checks a response file against an assessment file offline.
func NewValidateCmd() *cobra.Command {
	var assessmentPath, responsesPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate responses against an assessment document (YAML or JSON)",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readAssessment(assessmentPath)
			if err != nil {
				return err
			}
			responses, err := readResponses(responsesPath)
			if err != nil {
				return err
			}
			return runValidate(cmd.OutOrStdout(), doc, responses)
		},
	}
	cmd.Flags().StringVar(&assessmentPath, "assessment", "", "assessment document (YAML or JSON)")
	cmd.Flags().StringVar(&responsesPath, "responses", "", "responses object (JSON)")
	_ = cmd.MarkFlagRequired("assessment")
	_ = cmd.MarkFlagRequired("responses")
	return cmd
}

func runValidate(out io.Writer, doc domain.Assessment, responses domain.ResponseSet) error {
	warn := color.New(color.FgYellow)
	for _, issue := range builder.ReferenceIssues(doc) {
		warn.Fprintf(out, "warning: %s\n", issue)
	}
	if err := validation.Validate(doc, responses); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			color.New(color.FgRed).Fprintf(out, "%s (%s, question %s)\n", verr.Error(), verr.Code, verr.QuestionID)
		}
		return err
	}
	color.New(color.FgGreen).Fprintln(out, "ok")
	return nil
}

func readAssessment(path string) (domain.Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Assessment{}, err
	}
	var doc domain.Assessment
	// JSON documents parse as YAML too
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Assessment{}, fmt.Errorf("parse assessment %s: %w", path, err)
	}
	return doc, nil
}

func readResponses(path string) (domain.ResponseSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	responses := domain.ResponseSet{}
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("parse responses %s: %w", path, err)
	}
	return responses, nil
}
