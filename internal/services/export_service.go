package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

const (
	resultsSheet     = "Results"
	exportTimeLayout = "2006-01-02 15:04:05"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ExportQuizResults renders every submission of a quiz as an xlsx workbook.
// Rows are grouped per student, newest attempt first; each question gets an
// answer column and a correctness column.
func (s *reviewService) ExportQuizResults(ctx context.Context, actor Actor, quizID string) (data []byte, filename string, err error) {
	op := s.log.WithOperation(ctx, "review.export", actor.UserID)
	defer func() { op.LogResult(quizID, "quiz", err) }()

	results, err := s.QuizSubmissions(ctx, actor, quizID)
	if err != nil {
		return nil, "", err
	}
	names, err := s.studentNames(ctx, results.Quiz.ClassID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err = f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []interface{}{"Student ID", "Student Name", "Attempt", "Attempted At", "Grade Status", "Correct"}
	for i := range results.Quiz.Questions {
		headers = append(headers, fmt.Sprintf("Q%d Answer", i+1), fmt.Sprintf("Q%d Correct", i+1))
	}
	if err = setRow(f, 1, headers); err != nil {
		return nil, "", err
	}

	row := 2
	for _, studentID := range sortedKeys(results.ByStudent) {
		for _, submission := range results.ByStudent[studentID] {
			if err = setRow(f, row, resultRow(results.Quiz, &submission, names[studentID])); err != nil {
				return nil, "", err
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), exportFilename(results.Quiz), nil
}

// resultRow counts only evaluations of questions still on the quiz, so the
// score never exceeds the question count after questions are removed.
func resultRow(quiz *models.Quiz, submission *models.Submission, studentName string) []interface{} {
	correct := 0
	verdicts := make([]interface{}, 0, 2*len(quiz.Questions))
	for _, question := range quiz.Questions {
		verdict := ""
		if evaluation, ok := submission.Evaluations[question.ID]; ok {
			verdict = "No"
			if evaluation.IsCorrect {
				verdict = "Yes"
				correct++
			}
		}
		verdicts = append(verdicts, submission.Answers[question.ID], verdict)
	}

	row := []interface{}{
		submission.StudentID,
		studentName,
		submission.AttemptNumber,
		submission.AttemptedAt.Format(exportTimeLayout),
		string(submission.GradeStatus),
		fmt.Sprintf("%d/%d", correct, len(quiz.Questions)),
	}
	return append(row, verdicts...)
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// studentNames maps the class roster's student ids to display names
func (s *reviewService) studentNames(ctx context.Context, classID string) (map[string]string, error) {
	names := map[string]string{}
	if classID == "" {
		return names, nil
	}
	roster, err := s.repo.Enrollment().ListByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	for _, e := range roster {
		name := e.StudentName
		if name == "" {
			name = e.StudentEmail
		}
		names[e.StudentID] = name
	}
	return names, nil
}

func exportFilename(quiz *models.Quiz) string {
	base := strings.Trim(unsafeFilenameChars.ReplaceAllString(quiz.Title, "_"), "_")
	if base == "" {
		base = quiz.ID
	}
	return base + "-results.xlsx"
}

func sortedKeys(groups map[string][]models.Submission) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
