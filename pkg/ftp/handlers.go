package ftp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gusamyky/ftpfs/internal/logger"
	"github.com/gusamyky/ftpfs/pkg/report"
	"github.com/gusamyky/ftpfs/pkg/store/models"
)

func handleLogin(ctx context.Context, s *Session, args string) (Transition, error) {
	if s.identity.Authenticated {
		return noTransition, s.failCommand(ctx, VerbLogin, ReasonAlreadyLoggedIn, "Already logged in")
	}

	parts := strings.Fields(args)
	if len(parts) != 2 {
		return noTransition, s.failCommand(ctx, VerbLogin, ReasonInvalidArgs, "Invalid login arguments")
	}
	username, password := parts[0], parts[1]

	user, err := s.srv.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.srv.metrics.RecordAuth(false)
			return noTransition, s.failCommand(ctx, VerbLogin, ReasonUserNotFound, "User not found")
		}
		return noTransition, s.failCommand(ctx, VerbLogin, ReasonStorageError, "Error during login")
	}

	if !models.CheckPassword(password, user.PasswordHash) {
		s.srv.metrics.RecordAuth(false)
		logger.Warn("failed login attempt",
			logger.KeyUser, username,
			logger.KeyAddress, s.remote)
		return noTransition, s.failCommand(ctx, VerbLogin, ReasonInvalidPassword, "Invalid password")
	}

	if err := s.srv.store.UpdateLastLogin(ctx, username, time.Now()); err != nil {
		logger.Warn("failed to update last login",
			logger.KeyUser, username,
			logger.KeyError, err)
	}

	transition := loginAs(username, user.ID)
	s.srv.metrics.RecordAuth(true)
	s.srv.metrics.RecordCommand(VerbLogin, true)
	s.srv.auditor.Record(ctx, transition.Identity, okTag(VerbLogin, ""))
	logger.Info("user logged in",
		logger.KeyUser, username,
		logger.KeyAddress, s.remote)

	return transition, s.sendLine(RespLoginOK)
}

func handleRegister(ctx context.Context, s *Session, args string) (Transition, error) {
	if s.identity.Authenticated {
		return noTransition, s.failCommand(ctx, VerbRegister, ReasonAlreadyLoggedIn, "Already logged in")
	}

	parts := strings.Fields(args)
	if len(parts) != 2 {
		return noTransition, s.failCommand(ctx, VerbRegister, ReasonInvalidArgs, "Invalid register arguments")
	}
	username, password := parts[0], parts[1]

	if err := models.ValidatePassword(password); err != nil {
		return noTransition, s.failCommand(ctx, VerbRegister, ReasonInvalidArgs, err.Error())
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return noTransition, s.failCommand(ctx, VerbRegister, ReasonStorageError, "Error during registration")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if _, err := s.srv.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateUser) {
			s.srv.metrics.RecordAuth(false)
			return noTransition, s.failCommand(ctx, VerbRegister, ReasonUsernameExists, "Username already exists")
		}
		return noTransition, s.failCommand(ctx, VerbRegister, ReasonStorageError, "Error during registration")
	}

	// Register implies login for the new account.
	transition := loginAs(username, user.ID)
	s.srv.metrics.RecordAuth(true)
	s.srv.metrics.RecordCommand(VerbRegister, true)
	s.srv.auditor.Record(ctx, transition.Identity, okTag(VerbRegister, ""))
	logger.Info("user registered",
		logger.KeyUser, username,
		logger.KeyAddress, s.remote)

	return transition, s.sendLine(RespRegisterOK)
}

func handleLogout(ctx context.Context, s *Session, _ string) (Transition, error) {
	s.recordOK(ctx, VerbLogout, "")
	logger.Info("user logged out",
		logger.KeyUser, s.identity.Username,
		logger.KeyAddress, s.remote)
	return Transition{Kind: TransitionLogout}, s.sendOK("Logout successful")
}

func handleList(ctx context.Context, s *Session, _ string) (Transition, error) {
	files, err := s.srv.store.ListFilesByOwner(ctx, s.identity.UserID)
	if err != nil {
		return noTransition, s.failCommand(ctx, VerbList, ReasonStorageError, "LIST ERROR: Failed to list files")
	}

	var sb strings.Builder
	sb.WriteString("FILES:")
	if len(files) == 0 {
		sb.WriteString(" (no files)")
	} else {
		for _, f := range files {
			sb.WriteString(" ")
			sb.WriteString(f.Filename)
		}
	}

	s.recordOK(ctx, VerbList, "")
	return noTransition, s.sendLine(sb.String())
}

func handleHistory(ctx context.Context, s *Session, args string) (Transition, error) {
	username := strings.TrimSpace(args)
	if username == "" {
		return noTransition, s.failCommand(ctx, VerbHistory, ReasonNoUsername, "HISTORY ERROR: No username given")
	}

	// Any authenticated user may read any user's history. The source behaves
	// this way; tightening it is a product decision, not a porting one.
	user, err := s.srv.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return noTransition, s.failCommand(ctx, VerbHistory, ReasonUserNotFound, "HISTORY ERROR: User not found")
		}
		return noTransition, s.failCommand(ctx, VerbHistory, ReasonStorageError, "HISTORY ERROR: Failed to load history")
	}

	ops, err := s.srv.store.ListHistoryByOwner(ctx, user.ID)
	if err != nil {
		return noTransition, s.failCommand(ctx, VerbHistory, ReasonStorageError, "HISTORY ERROR: Failed to load history")
	}

	var sb strings.Builder
	sb.WriteString("HISTORY: ")
	if len(ops) == 0 {
		sb.WriteString("(no operations)")
	} else {
		for i, op := range ops {
			sb.WriteString(op.OccurredAt.Format("2006-01-02T15:04:05"))
			sb.WriteString(" | ")
			sb.WriteString(op.Operation)
			if i < len(ops)-1 {
				sb.WriteString("; ")
			}
		}
	}

	s.recordOK(ctx, VerbHistory, "")
	return noTransition, s.sendLine(sb.String())
}

func handleReport(ctx context.Context, s *Session, _ string) (Transition, error) {
	// Caller-scoped: only the current identity's history goes in the report.
	records, err := s.srv.store.ListHistoryByOwner(ctx, s.identity.UserID)
	if err != nil {
		return noTransition, s.failCommand(ctx, VerbReport, ReasonStorageError, "REPORT ERROR: Failed to load history")
	}

	if _, err := report.WriteFile(s.srv.config.FilesDir, s.identity.Username, records); err != nil {
		logger.Warn("failed to generate report",
			logger.KeyUser, s.identity.Username,
			logger.KeyError, err)
		return noTransition, s.failCommand(ctx, VerbReport, ReasonIOError, "REPORT ERROR: Failed to generate report")
	}

	s.recordOK(ctx, VerbReport, "")
	return noTransition, s.sendLine("Report generated successfully: " + report.Filename(s.identity.Username))
}

func handleEcho(ctx context.Context, s *Session, args string) (Transition, error) {
	msg := strings.TrimSpace(args)
	if msg == "" {
		return noTransition, s.failCommand(ctx, VerbEcho, ReasonNoMessage, "ECHO ERROR: No message provided")
	}

	s.recordOK(ctx, VerbEcho, "")
	return noTransition, s.sendOK(msg)
}
