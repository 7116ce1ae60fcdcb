package main

import (
	"strconv"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

// gradeFlag accepts "3", "grade3" or "Grade 3".
type gradeFlag struct {
	grade tutor.GradeLevel
}

var _ pflag.Value = (*gradeFlag)(nil)

func newGradeFlag(grade tutor.GradeLevel) *gradeFlag {
	return &gradeFlag{grade: grade}
}

func (f *gradeFlag) String() string {
	return strconv.Itoa(int(f.grade))
}

func (f *gradeFlag) Set(value string) error {
	grade, err := tutor.ParseGradeLevel(value)
	if err != nil {
		return err
	}
	f.grade = grade
	return nil
}

func (f *gradeFlag) Type() string {
	return "grade"
}

// subjectFlag accepts a subject name in any case, e.g. "math" or "social-science".
type subjectFlag struct {
	subject tutor.Subject
}

var _ pflag.Value = (*subjectFlag)(nil)

func (f *subjectFlag) String() string {
	return string(f.subject)
}

func (f *subjectFlag) Set(value string) error {
	subject, err := tutor.ParseSubject(value)
	if err != nil {
		return err
	}
	f.subject = subject
	return nil
}

func (f *subjectFlag) Type() string {
	return "subject"
}
