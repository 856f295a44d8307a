package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vault-agent/internal/classify"
	"github.com/phrazzld/vault-agent/internal/domain"
)

func TestKeywordClassifier(t *testing.T) {
	t.Parallel()

	c := classify.NewKeywordClassifier()

	cases := []struct {
		name    string
		content string
		want    domain.Domain
	}{
		{
			name:    "explicit business header overrides keywords",
			content: "Domain: business\n\nBook a doctor appointment and buy groceries.",
			want:    domain.DomainBusiness,
		},
		{
			name:    "explicit personal header overrides keywords",
			content: "Domain: personal\n\nPrepare the quarterly revenue report for the client.",
			want:    domain.DomainPersonal,
		},
		{
			name:    "business keywords win",
			content: "Quarterly revenue meeting with the client about the contract.",
			want:    domain.DomainBusiness,
		},
		{
			name:    "personal keywords win",
			content: "Grocery run, then gym, then book a doctor appointment.",
			want:    domain.DomainPersonal,
		},
		{
			name:    "tie defaults to business",
			content: "Family meeting on Saturday.",
			want:    domain.DomainBusiness,
		},
		{
			name:    "no keywords defaults to business",
			content: "Something entirely unclassifiable.",
			want:    domain.DomainBusiness,
		},
		{
			name:    "header match is case-insensitive",
			content: "DOMAIN: PERSONAL\n\nsome text",
			want:    domain.DomainPersonal,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			task, err := domain.NewTask("task-1", domain.TaskStatePending, tc.content)
			require.NoError(t, err)

			got, err := c.Classify(task)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKeywordClassifierDeterministic(t *testing.T) {
	t.Parallel()

	c := classify.NewKeywordClassifier()
	task, err := domain.NewTask("task-1", domain.TaskStatePending, "Plan the family vacation and the travel budget.")
	require.NoError(t, err)

	first, err := c.Classify(task)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := c.Classify(task)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestKeywordClassifierRejectsBlankContent(t *testing.T) {
	t.Parallel()

	c := classify.NewKeywordClassifier()
	task, err := domain.NewTask("task-1", domain.TaskStatePending, "   \n\t  ")
	require.NoError(t, err)

	_, err = c.Classify(task)
	assert.ErrorIs(t, err, classify.ErrMalformedTask)
}
