package domain

import "errors"

type Priority string

const (
	LOW    Priority = "low"
	MEDIUM Priority = "medium"
	HIGH   Priority = "high"
)

func (p Priority) String() string {
	return string(p)
}

func (p Priority) Valid() bool {
	switch p {
	case LOW, MEDIUM, HIGH:
		return true
	}
	return false
}

func PriorityFromString(s string) (Priority, error) {
	switch s {
	case "low":
		return LOW, nil
	case "medium":
		return MEDIUM, nil
	case "high":
		return HIGH, nil
	default:
		return "", errors.New("invalid priority")
	}
}
