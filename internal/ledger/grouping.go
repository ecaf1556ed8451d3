package ledger

import (
	"sort"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// GroupByQuiz groups submissions per quiz, each group sorted newest first by
// attempt number and then by attemptedAt. Attempt number wins over the
// timestamp, so client clock skew cannot reorder attempts.
func GroupByQuiz(submissions []models.Submission) map[string][]models.Submission {
	return groupBy(submissions, func(s *models.Submission) string { return s.QuizID })
}

// GroupByClass groups submissions per class with the same ordering as
// GroupByQuiz.
func GroupByClass(submissions []models.Submission) map[string][]models.Submission {
	return groupBy(submissions, func(s *models.Submission) string { return s.ClassID })
}

func groupBy(submissions []models.Submission, key func(*models.Submission) string) map[string][]models.Submission {
	groups := make(map[string][]models.Submission)
	for i := range submissions {
		k := key(&submissions[i])
		groups[k] = append(groups[k], submissions[i])
	}
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].AttemptNumber != group[j].AttemptNumber {
				return group[i].AttemptNumber > group[j].AttemptNumber
			}
			return group[i].AttemptedAt.After(group[j].AttemptedAt)
		})
	}
	return groups
}

// TeacherFeed merges the submissions of all of a teacher's quizzes into one
// list ordered by attemptedAt only, newest first. Unlike GroupByQuiz it
// ignores attempt numbers.
func TeacherFeed(perQuiz ...[]models.Submission) []models.Submission {
	total := 0
	for _, subs := range perQuiz {
		total += len(subs)
	}
	feed := make([]models.Submission, 0, total)
	for _, subs := range perQuiz {
		feed = append(feed, subs...)
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].AttemptedAt.After(feed[j].AttemptedAt)
	})
	return feed
}

// GroupByStudent groups one quiz's submissions per student with the same
// ordering as GroupByQuiz, for the teacher's per-quiz review.
func GroupByStudent(submissions []models.Submission) map[string][]models.Submission {
	return groupBy(submissions, func(s *models.Submission) string { return s.StudentID })
}
