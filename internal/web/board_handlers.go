package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"taskboard/internal/service"
)

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request, id identity) {
	var selected *uint
	if groupID, ok := parseID(r.URL.Query().Get("groupId")); ok {
		selected = &groupID
	}
	view, err := s.views.BuildView(r.Context(), id.UserID, selected)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render.Board(w, r, view)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request, id identity) {
	group, err := s.groups.Create(r.Context(), id.UserID, r.PostFormValue("name"), r.PostFormValue("color"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	redirectToBoard(w, r, group.ID)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request, id identity) {
	groupID, ok := pathID(r)
	if !ok {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	if err := s.groups.Delete(r.Context(), id.UserID, groupID); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectToBoard(w, r, 0)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, id identity) {
	groupID, err := formID(r, "groupId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.tasks.CreateTask(r.Context(), id.UserID, groupID, r.PostFormValue("title")); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectToBoard(w, r, groupID)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, id identity) {
	taskID, ok := pathID(r)
	if !ok {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	dueAt, err := parseOptionalTime("dueDate", r.PostFormValue("dueDate"), s.loc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	remindAt, err := parseOptionalTime("reminderDate", r.PostFormValue("reminderDate"), s.loc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	task, err := s.tasks.UpdateTask(r.Context(), id.UserID, taskID, service.TaskUpdate{
		Title:    r.PostFormValue("title"),
		Notes:    r.PostFormValue("notes"),
		DueAt:    dueAt,
		RemindAt: remindAt,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	redirectToBoard(w, r, task.GroupID)
}

// handleToggleTask treats a missing task as a no-op.
func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request, id identity) {
	groupID, _ := parseID(r.PostFormValue("groupId"))
	if taskID, ok := pathID(r); ok {
		_, err := s.tasks.ToggleTask(r.Context(), id.UserID, taskID, s.now())
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			s.fail(w, r, err)
			return
		}
	}
	redirectToBoard(w, r, groupID)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, id identity) {
	groupID, _ := parseID(r.PostFormValue("groupId"))
	if taskID, ok := pathID(r); ok {
		if err := s.tasks.DeleteTask(r.Context(), id.UserID, taskID); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	redirectToBoard(w, r, groupID)
}

func (s *Server) handleCreateSubtask(w http.ResponseWriter, r *http.Request, id identity) {
	taskID, err := formID(r, "taskId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	groupID, _ := parseID(r.PostFormValue("groupId"))
	if _, err := s.tasks.CreateSubtask(r.Context(), id.UserID, taskID, r.PostFormValue("title")); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectToBoard(w, r, groupID)
}

// handleToggleSubtask treats a missing subtask as a no-op.
func (s *Server) handleToggleSubtask(w http.ResponseWriter, r *http.Request, id identity) {
	groupID, _ := parseID(r.PostFormValue("groupId"))
	if subtaskID, ok := pathID(r); ok {
		_, err := s.tasks.ToggleSubtask(r.Context(), id.UserID, subtaskID)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			s.fail(w, r, err)
			return
		}
	}
	redirectToBoard(w, r, groupID)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, id identity) {
	if _, err := s.accounts.Create(r.Context(), id.UserID, r.PostFormValue("name")); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectToBoard(w, r, 0)
}

func (s *Server) handleSwitchAccount(w http.ResponseWriter, r *http.Request, id identity) {
	accountID, ok := pathID(r)
	if !ok {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	if err := s.accounts.SwitchDefault(r.Context(), id.UserID, accountID); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectToBoard(w, r, 0)
}

// handleLinkTelegram links the chat that receives reminders; a blank chatId unlinks it.
func (s *Server) handleLinkTelegram(w http.ResponseWriter, r *http.Request, id identity) {
	var chatID *int64
	if raw := strings.TrimSpace(r.PostFormValue("chatId")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.fail(w, r, &service.ValidationError{Field: "chatId", Message: "chatId must be a number"})
			return
		}
		chatID = &parsed
	}
	if err := s.auth.LinkTelegram(r.Context(), id.UserID, chatID); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectToBoard(w, r, 0)
}
