package ftp

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gusamyky/ftpfs/internal/logger"
	"github.com/gusamyky/ftpfs/pkg/store/models"
)

// Transfer directions for metrics labels.
const (
	directionUpload   = "upload"
	directionDownload = "download"
)

var (
	// errTransferIncomplete: the peer closed the stream before the declared
	// size was moved.
	errTransferIncomplete = errors.New("end of stream before transfer completed")

	// errTransferStalled: no forward progress within the stall timeout.
	errTransferStalled = errors.New("transfer stalled")
)

func handleUpload(ctx context.Context, s *Session, args string) (Transition, error) {
	filename := strings.TrimSpace(args)
	switch validateFilename(filename) {
	case ReasonNoFilename:
		return noTransition, s.failCommand(ctx, VerbUpload, ReasonNoFilename, "UPLOAD ERROR: No filename given")
	case ReasonInvalidFilename:
		return noTransition, s.failCommand(ctx, VerbUpload, ReasonInvalidFilename, "UPLOAD ERROR: Invalid filename")
	}

	// The filename namespace is global; a name registered to another user is
	// refused before any bytes are consumed so their file is never touched.
	if existing, err := s.srv.store.GetFileByName(ctx, filename); err == nil && existing.OwnerID != s.identity.UserID {
		return noTransition, s.failCommand(ctx, VerbUpload, ReasonAccessDenied, "UPLOAD ERROR: Access denied")
	}

	if err := s.sendLine(RespReady); err != nil {
		return noTransition, err
	}

	sizeLine, err := s.readLine(s.srv.config.IdleTimeout)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return noTransition, s.failCommand(ctx, VerbUpload, ReasonNoSize, "UPLOAD ERROR: No file size received")
		}
		return noTransition, err
	}

	size, err := strconv.ParseInt(strings.TrimSpace(sizeLine), 10, 64)
	if err != nil {
		return noTransition, s.failCommand(ctx, VerbUpload, ReasonInvalidSize, "UPLOAD ERROR: Invalid file size format")
	}
	if size <= 0 {
		return noTransition, s.failCommand(ctx, VerbUpload, ReasonInvalidSize, "UPLOAD ERROR: Invalid file size")
	}
	// Rejected before any file is opened; declared size is attacker-controlled.
	if max := s.srv.config.MaxUploadSize; max > 0 && size > max {
		return noTransition, s.failCommand(ctx, VerbUpload, ReasonFileTooLarge, "UPLOAD ERROR: File too large")
	}

	if err := os.MkdirAll(s.srv.config.FilesDir, 0o755); err != nil {
		return noTransition, s.failCommand(ctx, VerbUpload, ReasonIOError, "UPLOAD ERROR: "+err.Error())
	}
	path := filepath.Join(s.srv.config.FilesDir, filename)

	logger.Info("upload started",
		logger.KeyFilename, filename,
		logger.KeySize, size,
		logger.KeyUser, s.identity.Username,
		logger.KeyAddress, s.remote)
	start := time.Now()

	if err := s.receiveFile(path, size, filename); err != nil {
		// Remove the partial file before answering so it is never visible
		// to LIST or DOWNLOAD.
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn("failed to delete partial file",
				logger.KeyFilename, filename,
				logger.KeyError, rmErr)
		}
		if errors.Is(err, errTransferIncomplete) || errors.Is(err, errTransferStalled) {
			logger.Warn("upload transfer failed",
				logger.KeyFilename, filename,
				logger.KeyAddress, s.remote,
				logger.KeyError, err)
			return noTransition, s.failCommand(ctx, VerbUpload, ReasonTransferError, "UPLOAD ERROR: Failed to receive file")
		}
		return noTransition, s.failCommand(ctx, VerbUpload, ReasonIOError, "UPLOAD ERROR: "+err.Error())
	}

	file := &models.File{
		Filename:   filename,
		Size:       size,
		OwnerID:    s.identity.UserID,
		UploadedAt: time.Now(),
	}
	if err := s.srv.store.SaveFile(ctx, file); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			logger.Warn("failed to delete unregistered file",
				logger.KeyFilename, filename,
				logger.KeyError, rmErr)
		}
		return noTransition, s.failCommand(ctx, VerbUpload, ReasonStorageError, "UPLOAD ERROR: Failed to save file metadata")
	}

	s.srv.metrics.RecordTransfer(directionUpload, size, time.Since(start).Seconds())
	s.recordOK(ctx, VerbUpload, filename)
	logger.Info("upload finished",
		logger.KeyFilename, filename,
		logger.KeySize, size,
		logger.KeyUser, s.identity.Username,
		logger.KeyAddress, s.remote)
	return noTransition, s.sendOK("Upload successful")
}

// receiveFile copies exactly size bytes from the connection into a new file
// at path. Each read carries the stall deadline; a timed-out read aborts the
// transfer rather than the whole connection.
func (s *Session) receiveFile(path string, size int64, filename string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	buf := s.srv.pool.Get(s.srv.pool.ChunkSize())
	defer s.srv.pool.Put(buf)

	prog := newProgressTracker(directionUpload, filename, size)
	var received int64
	for received < size {
		if stall := s.srv.config.StallTimeout; stall > 0 {
			if err := s.conn.SetReadDeadline(time.Now().Add(stall)); err != nil {
				f.Close()
				return err
			}
		}

		chunk := buf
		if remaining := size - received; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}

		n, err := s.reader.Read(chunk)
		if n > 0 {
			if _, wErr := f.Write(chunk[:n]); wErr != nil {
				f.Close()
				return wErr
			}
			received += int64(n)
			prog.add(int64(n))
		}
		if err != nil {
			f.Close()
			if errors.Is(err, io.EOF) {
				return errTransferIncomplete
			}
			if isTimeout(err) {
				return errTransferStalled
			}
			return err
		}
	}

	if err := f.Close(); err != nil {
		return err
	}
	if received != size {
		return errTransferIncomplete
	}
	return nil
}

func handleDownload(ctx context.Context, s *Session, args string) (Transition, error) {
	filename := strings.TrimSpace(args)
	switch validateFilename(filename) {
	case ReasonNoFilename:
		return noTransition, s.failCommand(ctx, VerbDownload, ReasonNoFilename, "DOWNLOAD ERROR: No filename given")
	case ReasonInvalidFilename:
		return noTransition, s.failCommand(ctx, VerbDownload, ReasonInvalidFilename, "DOWNLOAD ERROR: Invalid filename")
	}

	file, err := s.srv.store.GetFileByName(ctx, filename)
	if err != nil {
		if errors.Is(err, models.ErrFileNotFound) {
			return noTransition, s.failCommand(ctx, VerbDownload, ReasonFileNotFound, "DOWNLOAD ERROR: File not found")
		}
		return noTransition, s.failCommand(ctx, VerbDownload, ReasonStorageError, "DOWNLOAD ERROR: Failed to look up file")
	}

	// Present but foreign files are denied, distinct from not found.
	if file.OwnerID != s.identity.UserID {
		return noTransition, s.failCommand(ctx, VerbDownload, ReasonAccessDenied, "DOWNLOAD ERROR: Access denied")
	}

	// Metadata and filesystem can disagree.
	path := filepath.Join(s.srv.config.FilesDir, filename)
	info, err := os.Stat(path)
	if err != nil {
		return noTransition, s.failCommand(ctx, VerbDownload, ReasonFileNotFoundOnServer, "DOWNLOAD ERROR: File not found on server")
	}
	size := info.Size()

	if err := s.sendLine(strconv.FormatInt(size, 10)); err != nil {
		return noTransition, err
	}

	logger.Info("download started",
		logger.KeyFilename, filename,
		logger.KeySize, size,
		logger.KeyUser, s.identity.Username,
		logger.KeyAddress, s.remote)
	start := time.Now()

	terminal, err := s.sendFile(path, size, filename)
	if err != nil {
		if terminal {
			// The client went away mid-stream; the session is over.
			logger.Debug("client disconnected during download",
				logger.KeyFilename, filename,
				logger.KeyAddress, s.remote)
			return noTransition, err
		}
		logger.Warn("download transfer failed",
			logger.KeyFilename, filename,
			logger.KeyAddress, s.remote,
			logger.KeyError, err)
		return noTransition, s.failCommand(ctx, VerbDownload, ReasonTransferError, "DOWNLOAD ERROR: Failed to send file")
	}

	s.srv.metrics.RecordTransfer(directionDownload, size, time.Since(start).Seconds())
	s.recordOK(ctx, VerbDownload, filename)
	logger.Info("download finished",
		logger.KeyFilename, filename,
		logger.KeySize, size,
		logger.KeyUser, s.identity.Username,
		logger.KeyAddress, s.remote)
	return noTransition, nil
}

// sendFile streams exactly size bytes from path to the connection, flushing
// chunk by chunk. terminal reports whether the failure was a socket write,
// which ends the session; file read failures are answered in-band.
func (s *Session) sendFile(path string, size int64, filename string) (terminal bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := s.srv.pool.Get(s.srv.pool.ChunkSize())
	defer s.srv.pool.Put(buf)

	prog := newProgressTracker(directionDownload, filename, size)
	var sent int64
	for sent < size {
		// Refreshed per chunk so a transfer is bounded by stall time, not
		// total duration.
		if stall := s.srv.config.StallTimeout; stall > 0 {
			if err := s.conn.SetWriteDeadline(time.Now().Add(stall)); err != nil {
				return true, err
			}
		}

		chunk := buf
		if remaining := size - sent; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}

		n, rErr := f.Read(chunk)
		if n > 0 {
			if _, wErr := s.writer.Write(chunk[:n]); wErr != nil {
				return true, wErr
			}
			if wErr := s.writer.Flush(); wErr != nil {
				return true, wErr
			}
			sent += int64(n)
			prog.add(int64(n))
		}
		if rErr != nil {
			if errors.Is(rErr, io.EOF) {
				return false, errTransferIncomplete
			}
			return false, rErr
		}
	}

	if sent != size {
		return false, errTransferIncomplete
	}
	return false, nil
}

// progressTracker logs transfer progress at each 10% threshold.
type progressTracker struct {
	direction string
	filename  string
	total     int64
	moved     int64
	lastPct   int64
}

func newProgressTracker(direction, filename string, total int64) *progressTracker {
	return &progressTracker{direction: direction, filename: filename, total: total}
}

func (p *progressTracker) add(n int64) {
	p.moved += n
	if p.total <= 0 {
		return
	}
	pct := p.moved * 100 / p.total
	if pct >= p.lastPct+10 {
		logger.Info(p.direction+" progress",
			logger.KeyFilename, p.filename,
			"percent", pct,
			logger.KeyBytes, p.moved,
			logger.KeySize, p.total)
		p.lastPct = pct
	}
}
