package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vault-agent/internal/domain"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("creates task with valid inputs", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("task-1", domain.TaskStatePending, "do the thing")
		require.NoError(t, err)

		assert.Equal(t, "task-1", task.ID)
		assert.Equal(t, domain.TaskStatePending, task.State)
		assert.Equal(t, "do the thing", task.Content)
		assert.Empty(t, task.Domain)
		assert.Zero(t, task.AttemptCount)
	})

	t.Run("parses header fields from content", func(t *testing.T) {
		t.Parallel()

		content := "# Email Task\n\n" +
			"From: alice@example.com\n" +
			"Subject: Quarterly planning\n" +
			"Date: 2025-06-02\n" +
			"Deadline: Friday\n" +
			"Domain: Business\n\n" +
			"## Content\nPlease review the plan.\n"

		task, err := domain.NewTask("task-2", domain.TaskStateIntake, content)
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", task.Sender)
		assert.Equal(t, "Quarterly planning", task.Subject)
		assert.Equal(t, "Friday", task.Deadline)
		assert.Equal(t, "business", task.DomainHint, "domain hint is lowercased")
	})

	t.Run("keeps first occurrence of repeated headers", func(t *testing.T) {
		t.Parallel()

		content := "From: first@example.com\nFrom: second@example.com\n"
		task, err := domain.NewTask("task-3", domain.TaskStatePending, content)
		require.NoError(t, err)

		assert.Equal(t, "first@example.com", task.Sender)
	})

	t.Run("parses headers after a very long line", func(t *testing.T) {
		t.Parallel()

		// A single line well past 64KB must not cut parsing short.
		content := strings.Repeat("x", 128*1024) + "\nFrom: alice@example.com\n"
		task, err := domain.NewTask("task-long", domain.TaskStatePending, content)
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", task.Sender)
	})

	t.Run("rejects empty ID", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask("", domain.TaskStatePending, "content")
		assert.ErrorIs(t, err, domain.ErrEmptyTaskID)
	})

	t.Run("rejects invalid state", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask("task-4", domain.TaskState("Limbo"), "content")
		assert.ErrorIs(t, err, domain.ErrInvalidTaskState)
	})
}

func TestTaskSetDomain(t *testing.T) {
	t.Parallel()

	t.Run("assigns domain once", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("task-1", domain.TaskStatePending, "content")
		require.NoError(t, err)

		require.NoError(t, task.SetDomain(domain.DomainBusiness))
		assert.Equal(t, domain.DomainBusiness, task.Domain)
	})

	t.Run("same value is a no-op", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("task-1", domain.TaskStatePending, "content")
		require.NoError(t, err)

		require.NoError(t, task.SetDomain(domain.DomainPersonal))
		assert.NoError(t, task.SetDomain(domain.DomainPersonal))
		assert.Equal(t, domain.DomainPersonal, task.Domain)
	})

	t.Run("different value is rejected", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("task-1", domain.TaskStatePending, "content")
		require.NoError(t, err)

		require.NoError(t, task.SetDomain(domain.DomainPersonal))
		err = task.SetDomain(domain.DomainBusiness)
		assert.ErrorIs(t, err, domain.ErrDomainAlreadySet)
		assert.Equal(t, domain.DomainPersonal, task.Domain, "original label survives")
	})

	t.Run("rejects unknown label", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("task-1", domain.TaskStatePending, "content")
		require.NoError(t, err)

		assert.ErrorIs(t, task.SetDomain(domain.Domain("mystery")), domain.ErrInvalidDomain)
	})
}

func TestTaskEmpty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "empty string", content: "", want: true},
		{name: "whitespace only", content: "  \n\t\n  ", want: true},
		{name: "real content", content: "buy groceries", want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			task, err := domain.NewTask("task-1", domain.TaskStatePending, tc.content)
			require.NoError(t, err)
			assert.Equal(t, tc.want, task.Empty())
		})
	}
}

func TestRoutedState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.TaskStatePersonal, domain.RoutedState(domain.DomainPersonal))
	assert.Equal(t, domain.TaskStateBusiness, domain.RoutedState(domain.DomainBusiness))
}

func TestIsValidDomain(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.IsValidDomain(domain.DomainPersonal))
	assert.True(t, domain.IsValidDomain(domain.DomainBusiness))
	assert.False(t, domain.IsValidDomain(domain.Domain("")))
	assert.False(t, domain.IsValidDomain(domain.Domain("work")))
}
