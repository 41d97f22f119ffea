package Models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidEnumValue = errors.New("invalid enum value")

type TaskStatus string

const (
	StatusUnknown   TaskStatus = "Unknown"
	StatusSubmitted TaskStatus = "Submitted"
	StatusDone      TaskStatus = "Done"
	StatusDeclined  TaskStatus = "Declined"
)

type TaskCategory string

const (
	CategoryCleaning  TaskCategory = "Cleaning"
	CategoryCutting   TaskCategory = "Cutting"
	CategoryRefilling TaskCategory = "Refilling"
	CategoryOther     TaskCategory = "Other"
)

type TaskType string

const (
	TypeDaily    TaskType = "Daily"
	TypePriority TaskType = "Priority"
)

type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// AllDays in calendar order, used by the schedule export.
var AllDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Member name -> canonical wire value for each enumeration. Clients send the
// wire value ("Cleaning", "monday"), some internal callers still pass the
// member name ("CLEANING", "MONDAY") and a few legacy ones the fully
// qualified form ("TaskCategory.CLEANING"). All three must resolve.
var (
	taskStatusMembers = map[string]string{
		"UNKNOWN":   string(StatusUnknown),
		"SUBMITTED": string(StatusSubmitted),
		"DONE":      string(StatusDone),
		"DECLINED":  string(StatusDeclined),
	}
	taskCategoryMembers = map[string]string{
		"CLEANING":  string(CategoryCleaning),
		"CUTTING":   string(CategoryCutting),
		"REFILLING": string(CategoryRefilling),
		"OTHER":     string(CategoryOther),
	}
	taskTypeMembers = map[string]string{
		"DAILY":    string(TypeDaily),
		"PRIORITY": string(TypePriority),
	}
	dayMembers = map[string]string{
		"MONDAY":    string(Monday),
		"TUESDAY":   string(Tuesday),
		"WEDNESDAY": string(Wednesday),
		"THURSDAY":  string(Thursday),
		"FRIDAY":    string(Friday),
		"SATURDAY":  string(Saturday),
		"SUNDAY":    string(Sunday),
	}
)

func CoerceTaskStatus(value string) (TaskStatus, error) {
	v, err := coerceEnum(value, "TaskStatus", taskStatusMembers)
	return TaskStatus(v), err
}

func CoerceTaskCategory(value string) (TaskCategory, error) {
	v, err := coerceEnum(value, "TaskCategory", taskCategoryMembers)
	return TaskCategory(v), err
}

func CoerceTaskType(value string) (TaskType, error) {
	v, err := coerceEnum(value, "TaskType", taskTypeMembers)
	return TaskType(v), err
}

func CoerceDay(value string) (Day, error) {
	v, err := coerceEnum(value, "Day", dayMembers)
	return Day(v), err
}

// coerceEnum resolves a wire string to a canonical enum value. Matching is
// value first, then member name, both case-sensitive. A "EnumName.MEMBER"
// qualifier is stripped before matching.
func coerceEnum(value, enumName string, members map[string]string) (string, error) {
	candidate := value
	if strings.HasPrefix(candidate, enumName+".") {
		candidate = strings.TrimPrefix(candidate, enumName+".")
	}

	for _, v := range members {
		if v == candidate {
			return v, nil
		}
	}

	if v, ok := members[candidate]; ok {
		return v, nil
	}

	valid := make([]string, 0, len(members))
	for name, v := range members {
		valid = append(valid, fmt.Sprintf("%s (%s)", name, v))
	}
	sort.Strings(valid)
	return "", fmt.Errorf("%w: %q is not a valid %s, valid values: %s",
		ErrInvalidEnumValue, value, enumName, strings.Join(valid, ", "))
}
