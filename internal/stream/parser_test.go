package stream

import "testing"

func TestSplitClosedBlock(t *testing.T) {
	out := Split("<think>A</think>B", true)
	if out.Reasoning != "A" || out.Answer != "B" {
		t.Fatalf("got %+v", out)
	}
}

func TestSplitUnclosedBlock(t *testing.T) {
	out := Split("<think>A", true)
	if out.Reasoning != "A" || out.Answer != "" {
		t.Fatalf("got %+v", out)
	}
}

func TestSplitReopenedBlock(t *testing.T) {
	// A block reopened after a close: the last unmatched open wins, so the
	// trailing text is reasoning and the answer stays empty until a further
	// close appears.
	out := Split("<think>A</think>B<think>C", true)
	if out.Reasoning != "C" || out.Answer != "" {
		t.Fatalf("got %+v", out)
	}
	out = Split("<think>A</think>B<think>C</think>D", true)
	if out.Answer != "D" {
		t.Fatalf("after close, answer should resume: %+v", out)
	}
}

func TestSplitNoMarkers(t *testing.T) {
	// Without any markers the text counts as an unclosed reasoning block.
	out := Split("just text", true)
	if out.Reasoning != "just text" || out.Answer != "" {
		t.Fatalf("got %+v", out)
	}
}

func TestSplitThinkingDisabled(t *testing.T) {
	out := Split("<think>A</think>B<|im_end|>", false)
	if out.Reasoning != "" || out.Answer != "AB" {
		t.Fatalf("got %+v", out)
	}
}

func TestSplitStripsControlMarkers(t *testing.T) {
	out := Split("<think> A <|im_start|></think> B <|endoftext|> ", true)
	if out.Reasoning != "A" || out.Answer != "B" {
		t.Fatalf("got %+v", out)
	}
}

func TestSplitIdempotent(t *testing.T) {
	raw := "<think>step</think>final"
	a := Split(raw, true)
	b := Split(raw, true)
	if a != b {
		t.Fatalf("split not repeatable: %+v vs %+v", a, b)
	}
}

func TestSplitGrowingStream(t *testing.T) {
	// Simulate token-by-token growth; reasoning then answer, both monotone.
	full := "<think>plan it</think>do it"
	var prev Parsed
	for i := 1; i <= len(full); i++ {
		out := Split(full[:i], true)
		_ = prev
		prev = out
	}
	if prev.Reasoning != "plan it" || prev.Answer != "do it" {
		t.Fatalf("final split wrong: %+v", prev)
	}
}
