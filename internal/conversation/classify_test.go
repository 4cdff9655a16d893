package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"carfind-workers/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected Classification
	}{
		{name: "hi", message: "hi", expected: Classification{Intent: IntentGreeting}},
		{name: "hello", message: "hello", expected: Classification{Intent: IntentGreeting}},
		{name: "hey", message: "hey", expected: Classification{Intent: IntentGreeting}},
		{name: "start", message: "start", expected: Classification{Intent: IntentGreeting}},
		{name: "greeting with casing and padding", message: "  HELLO ", expected: Classification{Intent: IntentGreeting}},
		{name: "greeting inside sentence is not greeting", message: "hi there", expected: Classification{Intent: IntentUnknown}},
		{name: "search", message: "find toyota aqua", expected: Classification{Intent: IntentSearch, SearchTerm: "toyota aqua"}},
		{name: "search is lowercased", message: "FIND Toyota", expected: Classification{Intent: IntentSearch, SearchTerm: "toyota"}},
		{name: "bare find", message: "find", expected: Classification{Intent: IntentNoSearchTerm}},
		{name: "find with trailing spaces", message: "find    ", expected: Classification{Intent: IntentNoSearchTerm}},
		{name: "finder is not a search", message: "finder", expected: Classification{Intent: IntentUnknown}},
		{name: "next", message: "next", expected: Classification{Intent: IntentNextPage}},
		{name: "next with padding", message: " Next ", expected: Classification{Intent: IntentNextPage}},
		{name: "help", message: "help", expected: Classification{Intent: IntentHelp}},
		{name: "free text", message: "how much is a prius", expected: Classification{Intent: IntentUnknown}},
		{name: "empty", message: "", expected: Classification{Intent: IntentUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.message))
		})
	}
}

func TestClassification_CommandType(t *testing.T) {
	tests := []struct {
		intent   Intent
		expected string
	}{
		{IntentGreeting, models.CommandGreeting},
		{IntentSearch, models.CommandSearch},
		{IntentNoSearchTerm, models.CommandSearch},
		{IntentNextPage, models.CommandNext},
		{IntentHelp, models.CommandHelp},
		{IntentUnknown, models.CommandUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			c := Classification{Intent: tt.intent}
			assert.Equal(t, tt.expected, c.CommandType())
		})
	}
}

func TestClassification_IsSearch(t *testing.T) {
	assert.True(t, Classify("find aqua").IsSearch())
	assert.False(t, Classify("find").IsSearch())
	assert.False(t, Classify("next").IsSearch())
	assert.False(t, Classify("hi").IsSearch())
}

func TestStaticResponse(t *testing.T) {
	tests := []struct {
		intent   Intent
		expected string
		ok       bool
	}{
		{IntentGreeting, GreetingResponse, true},
		{IntentHelp, GreetingResponse, true},
		{IntentNoSearchTerm, NoSearchTermResponse, true},
		{IntentUnknown, UnknownResponse, true},
		{IntentSearch, "", false},
		{IntentNextPage, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			got, ok := StaticResponse(tt.intent)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
