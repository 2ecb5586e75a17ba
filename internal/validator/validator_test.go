package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type credentials struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=6,max=100,nowhitespace"`
}

type task struct {
	Title       string  `json:"title" validate:"required,min=1,max=100,tasktitle"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500,taskdesc"`
}

func ptr(s string) *string { return &s }

func TestStruct_Credentials(t *testing.T) {
	tests := []struct {
		name string
		in   credentials
		want []string
	}{
		{name: "valid", in: credentials{"alice_01", "secret1"}, want: nil},
		{name: "short username", in: credentials{"al", "secret1"}, want: []string{"Username must be between 3 and 50 characters"}},
		{name: "long username", in: credentials{strings.Repeat("a", 51), "secret1"}, want: []string{"Username must be between 3 and 50 characters"}},
		{name: "bad characters", in: credentials{"al ice!", "secret1"}, want: []string{"Username can only contain letters, numbers, underscores, and hyphens"}},
		{name: "missing both", in: credentials{}, want: []string{"Username is required", "Password is required"}},
		{name: "short password", in: credentials{"alice", "12345"}, want: []string{"Password must be between 6 and 100 characters"}},
		{name: "whitespace password", in: credentials{"alice", "sec ret1"}, want: []string{"Password cannot contain whitespace"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Struct(tt.in))
		})
	}
}

func TestStruct_Task(t *testing.T) {
	tests := []struct {
		name string
		in   task
		want []string
	}{
		{name: "valid", in: task{Title: "Buy milk (2l), eggs!"}, want: nil},
		{name: "multiline description", in: task{Title: "Shop", Description: ptr("milk\nbread")}, want: nil},
		{name: "missing title", in: task{}, want: []string{"Task title is required"}},
		{name: "title too long", in: task{Title: strings.Repeat("a", 101)}, want: []string{"Task title must be between 1 and 100 characters"}},
		{name: "title characters", in: task{Title: "<script>"}, want: []string{"Task title contains invalid characters"}},
		{name: "description too long", in: task{Title: "ok", Description: ptr(strings.Repeat("b", 501))}, want: []string{"Task description cannot exceed 500 characters"}},
		{name: "description characters", in: task{Title: "ok", Description: ptr("50% off")}, want: []string{"Task description contains invalid characters"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Struct(tt.in))
		})
	}
}

func TestMessages_NonValidationError(t *testing.T) {
	assert.Equal(t, []string{"Invalid request"}, Messages(errors.New("boom")))
}

func TestMessage_Fallbacks(t *testing.T) {
	assert.Equal(t, "name is required", Message("name", "required", ""))
	assert.Equal(t, "name cannot exceed 10 characters", Message("name", "max", "10"))
	assert.Equal(t, "name is invalid", Message("name", "email", ""))
}
