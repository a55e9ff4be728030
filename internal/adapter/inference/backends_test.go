package inference

import "testing"

func TestCloudBackendsRequireKeys(t *testing.T) {
	if _, err := NewOpenAIBackend("", "", 0, nil); err == nil {
		t.Error("expected error for empty OpenAI key")
	}
	if _, err := NewGeminiBackend("", nil); err == nil {
		t.Error("expected error for empty Gemini key")
	}
	if _, err := NewOpenAIBackend("sk-test", "http://localhost:9999/v1", 0, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
