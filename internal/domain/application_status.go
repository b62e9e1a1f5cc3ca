package domain

import (
	"fmt"
	"strings"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusViewed   ApplicationStatus = "VIEWED"
	StatusAccepted ApplicationStatus = "ACCEPTED"
	StatusRejected ApplicationStatus = "REJECTED"
)

// transitions lists every allowed move. Terminal statuses have no entry.
var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending: {StatusViewed, StatusAccepted, StatusRejected},
	StatusViewed:  {StatusAccepted, StatusRejected},
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusViewed, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Decision is a company's verdict on an application.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionAccept:
		return DecisionAccept, nil
	case DecisionReject:
		return DecisionReject, nil
	}
	return "", fmt.Errorf("unknown decision %q", s)
}

// Target is the status a decision moves an application to.
func (d Decision) Target() ApplicationStatus {
	if d == DecisionAccept {
		return StatusAccepted
	}
	return StatusRejected
}

type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "LEFT"
	SwipeRight SwipeDirection = "RIGHT"
)

func ParseSwipeDirection(s string) (SwipeDirection, error) {
	switch SwipeDirection(strings.ToUpper(strings.TrimSpace(s))) {
	case SwipeLeft:
		return SwipeLeft, nil
	case SwipeRight:
		return SwipeRight, nil
	}
	return "", fmt.Errorf("unknown swipe direction %q", s)
}

// Decision maps a company swipe onto a verdict: right accepts, left rejects.
func (d SwipeDirection) Decision() Decision {
	if d == SwipeRight {
		return DecisionAccept
	}
	return DecisionReject
}
