package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gusamyky/ftpfs/pkg/store/models"
)

// createTestStore creates an in-memory SQLite store for testing.
func createTestStore(t *testing.T) *GORMStore {
	t.Helper()
	s, err := New(&Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	t.Run("default config uses sqlite", func(t *testing.T) {
		config := &Config{}
		config.ApplyDefaults()

		if config.Type != DatabaseTypeSQLite {
			t.Errorf("expected sqlite, got %s", config.Type)
		}
	})

	t.Run("invalid config returns error", func(t *testing.T) {
		_, err := New(&Config{Type: "invalid"})
		if err == nil {
			t.Error("expected error for invalid config")
		}
	})

	t.Run("postgres defaults", func(t *testing.T) {
		config := &Config{Type: DatabaseTypePostgres}
		config.ApplyDefaults()

		if config.Postgres.Port != 5432 {
			t.Errorf("expected port 5432, got %d", config.Postgres.Port)
		}
		if config.Postgres.SSLMode != "disable" {
			t.Errorf("expected sslmode disable, got %s", config.Postgres.SSLMode)
		}
	})
}

func TestUserOperations(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()
	ctx := context.Background()

	t.Run("create user", func(t *testing.T) {
		id, err := s.CreateUser(ctx, &models.User{
			Username:     "alice",
			PasswordHash: "hash",
			Role:         models.RoleUser,
		})
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if id == "" {
			t.Error("expected non-empty user ID")
		}
	})

	t.Run("duplicate user fails", func(t *testing.T) {
		_, err := s.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "other"})
		if !errors.Is(err, models.ErrDuplicateUser) {
			t.Errorf("expected ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("get by username", func(t *testing.T) {
		user, err := s.GetUserByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if user.Username != "alice" {
			t.Errorf("got username %q", user.Username)
		}
	})

	t.Run("unknown user not found", func(t *testing.T) {
		_, err := s.GetUserByUsername(ctx, "nobody")
		if !errors.Is(err, models.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("update last login", func(t *testing.T) {
		now := time.Now()
		if err := s.UpdateLastLogin(ctx, "alice", now); err != nil {
			t.Fatalf("failed to update last login: %v", err)
		}

		user, err := s.GetUserByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if user.LastLogin == nil {
			t.Error("expected last login to be set")
		}
	})

	t.Run("update last login for unknown user", func(t *testing.T) {
		err := s.UpdateLastLogin(ctx, "nobody", time.Now())
		if !errors.Is(err, models.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("delete user removes files and history", func(t *testing.T) {
		id, err := s.CreateUser(ctx, &models.User{Username: "bob", PasswordHash: "h"})
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if err := s.SaveFile(ctx, &models.File{Filename: "bob.txt", Size: 1, OwnerID: id}); err != nil {
			t.Fatalf("failed to save file: %v", err)
		}
		if err := s.AppendHistory(ctx, &models.HistoryRecord{OwnerID: id, Operation: "LOGIN_OK", Actor: "bob"}); err != nil {
			t.Fatalf("failed to append history: %v", err)
		}

		if err := s.DeleteUser(ctx, "bob"); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		if _, err := s.GetFileByName(ctx, "bob.txt"); !errors.Is(err, models.ErrFileNotFound) {
			t.Errorf("expected file to be deleted, got %v", err)
		}
		records, err := s.ListHistoryByOwner(ctx, id)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected history to be deleted, got %d records", len(records))
		}
	})
}

func TestFileOperations(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()
	ctx := context.Background()

	ownerID, err := s.CreateUser(ctx, &models.User{Username: "carol", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	t.Run("save and get", func(t *testing.T) {
		if err := s.SaveFile(ctx, &models.File{Filename: "a.txt", Size: 5, OwnerID: ownerID}); err != nil {
			t.Fatalf("failed to save file: %v", err)
		}

		file, err := s.GetFileByName(ctx, "a.txt")
		if err != nil {
			t.Fatalf("failed to get file: %v", err)
		}
		if file.Size != 5 || file.OwnerID != ownerID {
			t.Errorf("unexpected file record: %+v", file)
		}
	})

	t.Run("re-upload updates in place", func(t *testing.T) {
		if err := s.SaveFile(ctx, &models.File{Filename: "a.txt", Size: 9, OwnerID: ownerID}); err != nil {
			t.Fatalf("failed to re-save file: %v", err)
		}

		file, err := s.GetFileByName(ctx, "a.txt")
		if err != nil {
			t.Fatalf("failed to get file: %v", err)
		}
		if file.Size != 9 {
			t.Errorf("expected size 9 after re-upload, got %d", file.Size)
		}

		files, err := s.ListFilesByOwner(ctx, ownerID)
		if err != nil {
			t.Fatalf("failed to list files: %v", err)
		}
		if len(files) != 1 {
			t.Errorf("expected one record, got %d", len(files))
		}
	})

	t.Run("list is ordered by filename", func(t *testing.T) {
		for _, name := range []string{"z.txt", "b.txt"} {
			if err := s.SaveFile(ctx, &models.File{Filename: name, Size: 1, OwnerID: ownerID}); err != nil {
				t.Fatalf("failed to save %s: %v", name, err)
			}
		}

		files, err := s.ListFilesByOwner(ctx, ownerID)
		if err != nil {
			t.Fatalf("failed to list files: %v", err)
		}
		if len(files) != 3 {
			t.Fatalf("expected 3 files, got %d", len(files))
		}
		if files[0].Filename != "a.txt" || files[2].Filename != "z.txt" {
			t.Errorf("unexpected order: %s, %s, %s", files[0].Filename, files[1].Filename, files[2].Filename)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.DeleteFile(ctx, "z.txt"); err != nil {
			t.Fatalf("failed to delete file: %v", err)
		}
		if err := s.DeleteFile(ctx, "z.txt"); !errors.Is(err, models.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})
}

func TestHistoryOperations(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()
	ctx := context.Background()

	ownerID, err := s.CreateUser(ctx, &models.User{Username: "dave", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	ops := []string{"LOGIN_OK", "UPLOAD_OK: f.txt", "DOWNLOAD_FAIL:AccessDenied"}
	base := time.Now().Add(-time.Hour)
	for i, op := range ops {
		err := s.AppendHistory(ctx, &models.HistoryRecord{
			OwnerID:    ownerID,
			Operation:  op,
			Actor:      "dave",
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("failed to append history: %v", err)
		}
	}

	records, err := s.ListHistoryByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(records) != len(ops) {
		t.Fatalf("expected %d records, got %d", len(ops), len(records))
	}
	for i, record := range records {
		if record.Operation != ops[i] {
			t.Errorf("record %d: got %q, want %q", i, record.Operation, ops[i])
		}
	}
}

func TestCredentials(t *testing.T) {
	t.Run("hash and verify", func(t *testing.T) {
		hash, err := models.HashPassword("secret123")
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		if !models.CheckPassword("secret123", hash) {
			t.Error("expected password to verify")
		}
		if models.CheckPassword("wrong", hash) {
			t.Error("expected wrong password to fail")
		}
	})

	t.Run("empty password rejected", func(t *testing.T) {
		if _, err := models.HashPassword(""); !errors.Is(err, models.ErrPasswordTooShort) {
			t.Errorf("expected ErrPasswordTooShort, got %v", err)
		}
	})

	t.Run("oversized password rejected", func(t *testing.T) {
		long := make([]byte, models.MaxPasswordLength+1)
		for i := range long {
			long[i] = 'a'
		}
		if _, err := models.HashPassword(string(long)); !errors.Is(err, models.ErrPasswordTooLong) {
			t.Errorf("expected ErrPasswordTooLong, got %v", err)
		}
	})
}
