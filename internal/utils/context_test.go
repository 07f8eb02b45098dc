// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKey_String(t *testing.T) {
	if SubjectCtxKey.String() != "subject" {
		t.Errorf("expected 'subject', got %q", SubjectCtxKey.String())
	}
}

func TestGetSubjectFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		want   string
		wantOK bool
	}{
		{"subject present", WithSubject(context.Background(), "alice"), "alice", true},
		{"empty subject", WithSubject(context.Background(), ""), "", false},
		{"missing", context.Background(), "", false},
		{"wrong type", context.WithValue(context.Background(), SubjectCtxKey, 42), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetSubjectFromContext(tt.ctx)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
