package model

import "testing"

// ========== 状态机测试 ==========

func TestTestStatusValidNext(t *testing.T) {
	tests := []struct {
		name     string
		status   TestStatus
		expected []TestStatus
	}{
		{
			name:     "draft",
			status:   TestStatusDraft,
			expected: []TestStatus{TestStatusRunning, TestStatusArchived},
		},
		{
			name:     "running",
			status:   TestStatusRunning,
			expected: []TestStatus{TestStatusPaused, TestStatusCompleted, TestStatusArchived},
		},
		{
			name:     "paused",
			status:   TestStatusPaused,
			expected: []TestStatus{TestStatusRunning, TestStatusCompleted, TestStatusArchived},
		},
		{
			name:     "completed",
			status:   TestStatusCompleted,
			expected: []TestStatus{TestStatusArchived},
		},
		{
			name:     "archived is terminal",
			status:   TestStatusArchived,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.status.ValidNext()
			if len(got) != len(tt.expected) {
				t.Fatalf("ValidNext() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("ValidNext()[%d] = %s, want %s", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestTestStatusCanTransitionTo(t *testing.T) {
	if !TestStatusDraft.CanTransitionTo(TestStatusRunning) {
		t.Error("draft -> running should be valid")
	}
	if TestStatusDraft.CanTransitionTo(TestStatusCompleted) {
		t.Error("draft -> completed should be invalid")
	}
	if !TestStatusPaused.CanTransitionTo(TestStatusRunning) {
		t.Error("paused -> running should be valid")
	}
	if TestStatusArchived.CanTransitionTo(TestStatusRunning) {
		t.Error("archived -> running should be invalid")
	}
}

// ========== 结果模型测试 ==========

func TestRunResultIsSuccess(t *testing.T) {
	tests := []struct {
		status   RunStatus
		expected bool
	}{
		{RunStatusSuccess, true},
		{RunStatusError, false},
		{RunStatusTimeout, false},
	}

	for _, tt := range tests {
		r := &RunResult{Status: tt.status}
		if got := r.IsSuccess(); got != tt.expected {
			t.Errorf("IsSuccess() with %s = %v, want %v", tt.status, got, tt.expected)
		}
	}
}

func TestComparisonPairIsRated(t *testing.T) {
	pair := &ComparisonPair{}
	if pair.IsRated() {
		t.Error("pair without rated_at should be unrated")
	}

	preference := PreferenceTie
	pair.UserPreference = &preference
	if pair.IsRated() {
		t.Error("preference alone does not mark the pair rated")
	}
}
