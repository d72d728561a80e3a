package weights

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildSafetensors assembles a minimal safetensors file: 8-byte little-endian
// header length, JSON header, then zeroed tensor data.
func buildSafetensors(t *testing.T, header map[string]any, dataLen int) []byte {
	t.Helper()
	js, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	buf := make([]byte, 8, 8+len(js)+dataLen)
	binary.LittleEndian.PutUint64(buf, uint64(len(js)))
	buf = append(buf, js...)
	buf = append(buf, make([]byte, dataLen)...)
	return buf
}

func loraHeader(rank int, base string) map[string]any {
	h := map[string]any{
		"model.layers.0.self_attn.q_proj.lora_A.weight": map[string]any{
			"dtype":        "F16",
			"shape":        []int64{int64(rank), 4096},
			"data_offsets": []int64{0, int64(rank) * 4096 * 2},
		},
		"model.layers.0.self_attn.q_proj.lora_B.weight": map[string]any{
			"dtype":        "F16",
			"shape":        []int64{4096, int64(rank)},
			"data_offsets": []int64{0, int64(rank) * 4096 * 2},
		},
	}
	if base != "" {
		h["__metadata__"] = map[string]string{"base_model": base}
	}
	return h
}

func TestParseSafetensors(t *testing.T) {
	b := buildSafetensors(t, loraHeader(16, "medllama-7b"), 64)
	rank, base, err := parseSafetensors(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rank != 16 {
		t.Fatalf("rank = %d, want 16", rank)
	}
	if base != "medllama-7b" {
		t.Fatalf("base = %q, want medllama-7b", base)
	}
}

func TestParseSafetensorsNoMetadata(t *testing.T) {
	b := buildSafetensors(t, loraHeader(8, ""), 0)
	rank, base, err := parseSafetensors(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rank != 8 || base != "" {
		t.Fatalf("got rank=%d base=%q", rank, base)
	}
}

func TestParseSafetensorsBaseModelNameOrPath(t *testing.T) {
	h := loraHeader(4, "")
	h["__metadata__"] = map[string]string{"base_model_name_or_path": "org/medllama-7b"}
	_, base, err := parseSafetensors(buildSafetensors(t, h, 0))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if base != "org/medllama-7b" {
		t.Fatalf("base = %q", base)
	}
}

func TestParseSafetensorsNoLoraTensors(t *testing.T) {
	h := map[string]any{
		"model.embed_tokens.weight": map[string]any{
			"dtype":        "F16",
			"shape":        []int64{32000, 4096},
			"data_offsets": []int64{0, 8},
		},
	}
	rank, _, err := parseSafetensors(buildSafetensors(t, h, 8))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rank != 0 {
		t.Fatalf("rank = %d, want 0 for non-LoRA file", rank)
	}
}

func TestParseSafetensorsMalformed(t *testing.T) {
	cases := map[string][]byte{
		"too short":   {0x01, 0x02},
		"zero header": append(make([]byte, 8), 'x'),
		"header past end": func() []byte {
			b := make([]byte, 8)
			binary.LittleEndian.PutUint64(b, 1<<30)
			return b
		}(),
		"bad json": func() []byte {
			b := make([]byte, 8, 12)
			binary.LittleEndian.PutUint64(b, 4)
			return append(b, "{{{{"...)
		}(),
	}
	for name, b := range cases {
		if _, _, err := parseSafetensors(b); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFileLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cardiology.safetensors")
	raw := buildSafetensors(t, loraHeader(16, "medllama-7b"), 256)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := NewFileLoader()
	h, err := l.Load(context.Background(), "cardiology", path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if h.Name != "cardiology" || h.Rank != 16 || h.BaseModel != "medllama-7b" {
		t.Fatalf("unexpected handle %+v", h)
	}
	if len(h.Payload()) != len(raw) {
		t.Fatalf("payload %d bytes, want %d", len(h.Payload()), len(raw))
	}
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if h.Payload() != nil {
		t.Fatalf("payload retained after close")
	}
}

func TestFileLoaderLoadMissingFile(t *testing.T) {
	l := NewFileLoader()
	if _, err := l.Load(context.Background(), "x", filepath.Join(t.TempDir(), "absent.safetensors")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFileLoaderLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewFileLoader()
	if _, err := l.Load(ctx, "x", "/does/not/matter"); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoadBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medllama-7b-q4.gguf")
	if err := os.WriteFile(path, append([]byte("GGUF"), make([]byte, 128)...), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	l := NewFileLoader()
	h, err := l.LoadBase(path)
	if err != nil {
		t.Fatalf("load base: %v", err)
	}
	if h.ID != "medllama-7b-q4" {
		t.Fatalf("id = %q", h.ID)
	}
	if h.SizeMB < 1 {
		t.Fatalf("size = %d", h.SizeMB)
	}
}

func TestLoadBaseShortHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.gguf")
	if err := os.WriteFile(path, []byte("GG"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	l := NewFileLoader()
	_, err := l.LoadBase(path)
	if err == nil || !strings.Contains(err.Error(), "read base model header") {
		t.Fatalf("expected short-header error, got %v", err)
	}
}

func TestLoadBaseRejectsNonGGUF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gguf")
	if err := os.WriteFile(path, []byte("not a model"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	l := NewFileLoader()
	_, err := l.LoadBase(path)
	if err == nil || !strings.Contains(err.Error(), "not a GGUF file") {
		t.Fatalf("expected GGUF rejection, got %v", err)
	}
}

func TestCompatibleWith(t *testing.T) {
	base := &BaseHandle{ID: "medllama-7b"}
	cases := []struct {
		name    string
		h       Handle
		wantErr bool
	}{
		{"matching binding", Handle{Rank: 8, BaseModel: "medllama-7b", Path: "a.safetensors"}, false},
		{"case-insensitive binding", Handle{Rank: 8, BaseModel: "MedLLaMA-7B", Path: "a.safetensors"}, false},
		{"no binding", Handle{Rank: 8, Path: "a.safetensors"}, false},
		{"wrong binding", Handle{Rank: 8, BaseModel: "other-13b", Path: "a.safetensors"}, true},
		{"no lora tensors", Handle{Rank: 0, Path: "a.safetensors"}, true},
	}
	for i := range cases {
		tc := &cases[i]
		err := tc.h.CompatibleWith(base)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}
