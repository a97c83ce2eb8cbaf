package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindAndStatus(t *testing.T) {
	cases := []struct {
		err    error
		kind   string
		status int
	}{
		{ErrAnswerCountMismatch, "AnswerCountMismatch", http.StatusBadRequest},
		{ErrEmptyOrderSet, "EmptyOrderSet", http.StatusBadRequest},
		{ErrInvalidStatus, "InvalidStatus", http.StatusBadRequest},
		{ErrNotEnrolled, "NotEnrolled", http.StatusConflict},
		{ErrTopicProgressMissing, "TopicProgressMissing", http.StatusConflict},
		{ErrOrderSetMismatch, "OrderSetMismatch", http.StatusConflict},
		{ErrAlreadyEnrolled, "AlreadyEnrolled", http.StatusConflict},
		{ErrCourseUnavailable, "CourseUnavailable", http.StatusConflict},
		{ErrNoQuiz, "NoQuiz", http.StatusConflict},
		{ErrStatusRegression, "StatusRegression", http.StatusConflict},
		{ErrEnrollmentHasProgress, "EnrollmentHasProgress", http.StatusConflict},
		{ErrCourseTitleTaken, "CourseTitleTaken", http.StatusConflict},
		{ErrCourseInUse, "CourseInUse", http.StatusConflict},
		{ErrCourseNotFound, "NotFound", http.StatusNotFound},
		{ErrLessonNotFound, "NotFound", http.StatusNotFound},
		{ErrEnrollmentNotFound, "NotFound", http.StatusNotFound},
		{ErrConcurrencyConflict, "ConcurrencyConflict", http.StatusServiceUnavailable},
		{ErrEmailRegistered, "EmailRegistered", http.StatusConflict},
		{errors.New("database on fire"), "Internal", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.kind+"/"+tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.kind, ErrorKind(tc.err))
			assert.Equal(t, tc.status, ErrorStatus(tc.err))
		})
	}
}

func TestErrorKindUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("apply progress: %w", ErrNotEnrolled)
	assert.Equal(t, "NotEnrolled", ErrorKind(wrapped))
	assert.Equal(t, http.StatusConflict, ErrorStatus(wrapped))
}
