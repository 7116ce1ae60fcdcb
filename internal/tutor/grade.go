package tutor

import (
	"fmt"
	"strconv"
	"strings"
)

// GradeLevel is a school grade from Grade 1 to Grade 8.
type GradeLevel int

const (
	Grade1 GradeLevel = iota + 1
	Grade2
	Grade3
	Grade4
	Grade5
	Grade6
	Grade7
	Grade8
)

const (
	MinGrade = Grade1
	MaxGrade = Grade8
)

func (g GradeLevel) String() string {
	return fmt.Sprintf("Grade %d", int(g))
}

func (g GradeLevel) Valid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// Grades returns every supported grade in order.
func Grades() []GradeLevel {
	grades := make([]GradeLevel, 0, MaxGrade)
	for g := MinGrade; g <= MaxGrade; g++ {
		grades = append(grades, g)
	}
	return grades
}

// ParseGradeLevel accepts "3", "grade3", "Grade 3" and similar spellings.
func ParseGradeLevel(s string) (GradeLevel, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.TrimPrefix(normalized, "grade")
	normalized = strings.TrimSpace(strings.TrimLeft(normalized, " -_"))

	n, err := strconv.Atoi(normalized)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown grade %q", ErrInvalidInput, s)
	}
	grade := GradeLevel(n)
	if !grade.Valid() {
		return 0, fmt.Errorf("%w: grade %d is not between %d and %d", ErrInvalidInput, n, MinGrade, MaxGrade)
	}
	return grade, nil
}

// Subject is a school subject offered for worksheets.
type Subject string

const (
	SubjectMath          Subject = "Math"
	SubjectScience       Subject = "Science"
	SubjectEnglish       Subject = "English"
	SubjectSocialScience Subject = "Social Science"
	SubjectComputer      Subject = "Computer"
)

// Subjects returns every supported subject in display order.
func Subjects() []Subject {
	return []Subject{SubjectMath, SubjectScience, SubjectEnglish, SubjectSocialScience, SubjectComputer}
}

// ParseSubject matches a subject name case-insensitively, ignoring spaces, "-" and "_".
func ParseSubject(s string) (Subject, error) {
	key := subjectKey(s)
	for _, subject := range Subjects() {
		if subjectKey(string(subject)) == key {
			return subject, nil
		}
	}
	return "", fmt.Errorf("%w: unknown subject %q", ErrInvalidInput, s)
}

func subjectKey(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}
