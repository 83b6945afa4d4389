package usecase

import (
	"testing"

	"github.com/noteground/noteground/internal/core/domain"
)

func TestClassifyQuestion(t *testing.T) {
	cases := []struct {
		question string
		want     domain.QueryType
	}{
		{"What is the capital of France?", domain.QueryFactual},
		{"who wrote this note", domain.QueryFactual},
		{"How many meetings did I log last week?", domain.QueryFactual},
		{"Is the project deadline in March?", domain.QueryFactual},
		{"Summarize my notes about the trip", domain.QuerySummarization},
		{"Give me an overview of the reading list", domain.QuerySummarization},
		{"tl;dr of the budget notes", domain.QuerySummarization},
		{"Tell me about my thoughts on distributed systems", domain.QueryExploratory},
		{"connections between cooking and chemistry notes", domain.QueryExploratory},
	}

	for _, tc := range cases {
		if got := classifyQuestion(tc.question); got != tc.want {
			t.Fatalf("classifyQuestion(%q) = %s, want %s", tc.question, got, tc.want)
		}
	}
}
