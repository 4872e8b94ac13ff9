package vector

import (
	"math"
	"reflect"
	"testing"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
		wantErr  bool
	}{
		{
			name:     "simple",
			a:        []float32{1.0, 2.0, 3.0},
			b:        []float32{4.0, 5.0, 6.0},
			expected: 32.0,
		},
		{
			name:     "orthogonal",
			a:        []float32{1.0, 0.0},
			b:        []float32{0.0, 1.0},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        []float32{0.0, 0.0},
			b:        []float32{3.0, 4.0},
			expected: 0.0,
		},
		{
			name:    "different length vectors",
			a:       []float32{1.0},
			b:       []float32{1.0, 2.0},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Dot(test.a, test.b)
			if (err != nil) != test.wantErr {
				t.Errorf("Dot() error = %v, wantErr %v", err, test.wantErr)
				return
			}
			if !test.wantErr && math.Abs(got-test.expected) > 1e-9 {
				t.Errorf("Dot() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestHashingEmbedder(t *testing.T) {
	embedder := NewHashingEmbedder(DefaultEmbeddingDimensions)

	// Test initialization
	err := embedder.Initialize()
	if err != nil {
		t.Errorf("HashingEmbedder.Initialize() error = %v", err)
		return
	}

	// Test embedding creation
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "single word",
			input: "Hello",
		},
		{
			name:  "short text",
			input: "Hello, world!",
		},
		{
			name:  "longer text",
			input: "This is a longer piece of text to test the embedding functionality.",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			embedding := embedder.CreateEmbedding(test.input)

			// Check dimensions
			if len(embedding) != DefaultEmbeddingDimensions {
				t.Errorf("Expected embedding dimension %d, got %d", DefaultEmbeddingDimensions, len(embedding))
			}

			// Check unit length (normalization)
			var sumSquares float64
			for _, val := range embedding {
				sumSquares += float64(val) * float64(val)
			}
			magnitude := math.Sqrt(sumSquares)
			if math.Abs(magnitude-1.0) > 1e-5 {
				t.Errorf("Expected unit vector (magnitude 1.0), got %f", magnitude)
			}

			// Create embedding for the same input again and verify it's deterministic
			embedding2 := embedder.CreateEmbedding(test.input)
			if !reflect.DeepEqual(embedding, embedding2) {
				t.Errorf("Expected identical embeddings for the same input, but they differ")
			}
		})
	}
}

func TestHashingEmbedderEmptyText(t *testing.T) {
	embedding := NewHashingEmbedder(16).CreateEmbedding(" ... ")
	for i, v := range embedding {
		if v != 0 {
			t.Fatalf("Expected zero vector, got %v at index %d", v, i)
		}
	}
}

func TestHashingEmbedderCaseInsensitive(t *testing.T) {
	embedder := NewHashingEmbedder(0)
	if embedder.Dimensions() != DefaultEmbeddingDimensions {
		t.Fatalf("Expected default dimensions, got %d", embedder.Dimensions())
	}

	a := embedder.CreateEmbedding("Budget Review")
	b := embedder.CreateEmbedding("budget review.")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Expected case and punctuation to be ignored")
	}
}
