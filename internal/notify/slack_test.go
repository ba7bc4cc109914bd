package notify

import "testing"

func TestNewWithoutCredentialsIsNil(t *testing.T) {
	if n := New("", "C123"); n != nil {
		t.Fatalf("expected nil notifier without token")
	}
	if n := New("xoxb-token", ""); n != nil {
		t.Fatalf("expected nil notifier without channel")
	}
}

func TestNilNotifierPostIsNoop(t *testing.T) {
	var n *Notifier
	n.PostBatchSummary(BatchSummary{Input: "batch.csv", Total: 3})
}
