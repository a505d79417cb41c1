package models

// Statistics summarises task counts across every task in the store.
type Statistics struct {
	TotalTasks int            `json:"totalTasks"`
	ByStatus   StatusCounts   `json:"byStatus"`
	ByPriority PriorityCounts `json:"byPriority"`
}

type StatusCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Count adds n tasks with the given status and priority to the totals.
func (s *Statistics) Count(status Status, priority Priority, n int) {
	s.TotalTasks += n

	switch status {
	case StatusPending:
		s.ByStatus.Pending += n
	case StatusInProgress:
		s.ByStatus.InProgress += n
	case StatusCompleted:
		s.ByStatus.Completed += n
	}

	switch priority {
	case PriorityLow:
		s.ByPriority.Low += n
	case PriorityMedium:
		s.ByPriority.Medium += n
	case PriorityHigh:
		s.ByPriority.High += n
	}
}
