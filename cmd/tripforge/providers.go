package main

// Provider blank imports: each import activates a self-registering adapter.

import (
	_ "github.com/Strob0t/TripForge/internal/adapter/gemini"
	_ "github.com/Strob0t/TripForge/internal/adapter/litellm"
	_ "github.com/Strob0t/TripForge/internal/adapter/openai"
)
