package httpapi

import (
	"net/http"
	"strings"

	"zhujian/internal/ports"
	"zhujian/internal/usecase/assistant"
)

type chatMessagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Query       string               `json:"query"`
	ProjectName string               `json:"project_name"`
	Messages    []chatMessagePayload `json:"messages"`
}

func (s *Server) handleAIStatus(w http.ResponseWriter, _ *http.Request) {
	current := s.settings.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"llm": map[string]any{
			"provider":    "doubao",
			"configured":  current.Configured(),
			"has_api_key": strings.TrimSpace(current.APIKey) != "",
			"has_model":   strings.TrimSpace(current.Model) != "",
			"has_client":  s.chat.Configured(),
			"model":       current.Model,
			"base_url":    current.BaseURL,
			"note":        "configured=true 表示已检测到 API Key + model/endpoint；是否实际调用以 meta.llm.used 为准。",
		},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	messages := make([]ports.ChatMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, ports.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	out, err := s.assistant.Chat(r.Context(), assistant.ChatInput{
		ProjectName: req.ProjectName,
		Query:       req.Query,
		Messages:    messages,
	})
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
