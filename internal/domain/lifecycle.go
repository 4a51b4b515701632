package domain

import "time"

// DateOf отбрасывает время суток; даты задач хранятся без времени
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeProgress возвращает процент выполненных задач, округлённый вниз.
// Заблокированные и отменённые задачи считаются невыполненными.
func ComputeProgress(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(completed * 100 / total)
}

// ProgressOf считает прогресс по уже загруженному списку задач
func ProgressOf(tasks []Task) int {
	var completed int64
	for _, t := range tasks {
		if t.State == TaskCompleted {
			completed++
		}
	}
	return ComputeProgress(completed, int64(len(tasks)))
}

var nextPriority = map[Priority]Priority{
	PriorityLow:    PriorityMedium,
	PriorityMedium: PriorityHigh,
	PriorityHigh:   PriorityUrgent,
}

// EscalatePriority повышает приоритет на одну ступень.
// Второе значение false, если приоритет уже urgent или неизвестен.
func EscalatePriority(p Priority) (Priority, bool) {
	next, ok := nextPriority[p]
	if !ok {
		return p, false
	}
	return next, true
}

// ApplyTaskTransition проставляет даты при смене статуса задачи.
// previous - статус, сохранённый в базе до изменения (пустой для новой задачи).
// Уже проставленные даты и исполнитель не перезаписываются.
func ApplyTaskTransition(task *Task, previous TaskState, actorID int64, today time.Time) {
	if task.State == previous {
		return
	}

	day := DateOf(today)
	switch task.State {
	case TaskInProgress:
		if task.StartDate == nil {
			task.StartDate = &day
		}
	case TaskCompleted:
		if task.CompletionDate == nil {
			task.CompletionDate = &day
			task.CompletedByID = &actorID
		}
	}
}

// ApplyReview выставляет результат проверки документа.
// Решение approved/rejected всегда перезаписывает проверяющего и время проверки.
func ApplyReview(doc *Document, outcome DocumentState, reviewerID int64, now time.Time) error {
	switch outcome {
	case DocumentApproved, DocumentRejected, DocumentInReview:
	default:
		return ErrInvalidReviewResult
	}

	doc.State = outcome
	if outcome.Terminal() {
		reviewedAt := now
		doc.ReviewerID = &reviewerID
		doc.ReviewedAt = &reviewedAt
	}
	return nil
}
