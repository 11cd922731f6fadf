package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNilBus(t *testing.T) {
	var b *Bus

	require.Error(t, b.Publish(context.Background(), "taskmate.activity.task_created", map[string]string{}))
	require.Error(t, b.EnsureStream("TASKMATE", "taskmate.>"))
	require.NotPanics(t, b.Close)
}
