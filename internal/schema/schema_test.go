package schema

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "minimal",
			doc: `on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: make
`,
		},
		{
			name: "reusable workflow job",
			doc: `on:
  push:
    branches:
      - main
  workflow_dispatch: null
permissions: read-all
jobs:
  call:
    uses: octo/repo/.github/workflows/ci.yml@main
    secrets: inherit
`,
		},
		{
			name: "missing jobs",
			doc: `on: push
`,
			wantErr: true,
		},
		{
			name: "unknown top-level key",
			doc: `on: push
stages: []
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: make
`,
			wantErr: true,
		},
		{
			name: "bad permission level",
			doc: `on: push
permissions:
  contents: admin
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: make
`,
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(context.Background(), []byte(test.doc))
			if (err != nil) != test.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %t", err, test.wantErr)
			}
			if err == nil {
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Validate() error type = %T, want *ValidationError", err)
			}
		})
	}
}

func TestValidateBadYAML(t *testing.T) {
	t.Parallel()

	err := Validate(context.Background(), []byte("on: [push\n"))
	if err == nil {
		t.Fatal("Validate(malformed) error = nil, want parse error")
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Errorf("Validate(malformed) error = %v, want a parse error, not a schema error", err)
	}
}

// Run with -race: the schema is shared by every caller.
func TestValidateConcurrent(t *testing.T) {
	t.Parallel()

	valid := []byte("on: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: make\n")
	invalid := []byte("on: push\npermissions:\n  contents: admin\njobs: {}\n")

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				if err := Validate(context.Background(), valid); err != nil {
					errs <- err
					return
				}
				if i%2 == 0 {
					if err := Validate(context.Background(), invalid); err == nil {
						errs <- errors.New("invalid document passed validation")
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Validate() error = %v", err)
	}
}
