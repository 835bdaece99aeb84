// Package session manages the output folder lifecycle for one engine process.
//
// Each engine start allocates a session folder under the data output path:
//
//	{dataOutputPath}/{YYYY-MM-DD}/session_N/
//
// Report artifacts (the report database, log files) live inside that folder.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketloop/marketloop/internal/logger"
)

// SessionManager allocates and tracks the per-process session folder.
type SessionManager struct {
	dataOutputPath string
	sessionID      string
	folderName     string
	sessionNumber  int
	sessionStart   time.Time
	currentDate    string
	currentPath    string
	mu             sync.Mutex
	logger         *logger.Logger
}

// NewSessionManager creates a new SessionManager instance.
func NewSessionManager(log *logger.Logger) *SessionManager {
	return &SessionManager{
		logger: log,
	}
}

// Initialize sets up the session manager with the data output path.
// It assigns the session ID, determines the next session number for today,
// and creates the folder structure.
func (s *SessionManager) Initialize(dataOutputPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dataOutputPath = dataOutputPath
	s.sessionID = uuid.New().String()
	s.sessionStart = time.Now()
	s.currentDate = s.sessionStart.Format("2006-01-02")

	sessionNumber, err := s.determineSessionNumber(s.currentDate)
	if err != nil {
		return fmt.Errorf("failed to determine session number: %w", err)
	}

	s.sessionNumber = sessionNumber
	s.folderName = fmt.Sprintf("session_%d", sessionNumber)

	if err := s.createFolderStructure(); err != nil {
		return fmt.Errorf("failed to create folder structure: %w", err)
	}

	s.logger.Info("Session initialized",
		zap.String("session_id", s.sessionID),
		zap.String("folder", s.folderName),
		zap.String("date", s.currentDate),
		zap.String("path", s.currentPath),
	)

	return nil
}

// determineSessionNumber scans the date folder for existing session folders
// and returns the next number.
//
//nolint:funcorder // helper method used by Initialize
func (s *SessionManager) determineSessionNumber(date string) (int, error) {
	datePath := filepath.Join(s.dataOutputPath, date)

	if _, err := os.Stat(datePath); os.IsNotExist(err) {
		// First session for this date
		return 1, nil
	}

	entries, err := os.ReadDir(datePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read date directory: %w", err)
	}

	sessionPattern := regexp.MustCompile(`^session_(\d+)$`)
	maxNumber := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		matches := sessionPattern.FindStringSubmatch(entry.Name())
		if len(matches) == 2 {
			num, err := strconv.Atoi(matches[1])
			if err != nil {
				continue
			}

			if num > maxNumber {
				maxNumber = num
			}
		}
	}

	return maxNumber + 1, nil
}

// createFolderStructure creates the folder for the current session.
//
//nolint:funcorder // helper method used by Initialize
func (s *SessionManager) createFolderStructure() error {
	s.currentPath = filepath.Join(s.dataOutputPath, s.currentDate, s.folderName)

	if err := os.MkdirAll(s.currentPath, 0755); err != nil {
		return fmt.Errorf("failed to create session folder: %w", err)
	}

	return nil
}

// GetSessionID returns the unique session identifier.
func (s *SessionManager) GetSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessionID
}

// GetCurrentPath returns the current session folder path.
func (s *SessionManager) GetCurrentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentPath
}

// GetSessionNumber returns the numeric session number for today.
func (s *SessionManager) GetSessionNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessionNumber
}

// GetSessionStart returns the session start time.
func (s *SessionManager) GetSessionStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessionStart
}

// GetFilePath returns the full path for a file in the current session folder.
func (s *SessionManager) GetFilePath(filename string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filepath.Join(s.currentPath, filename)
}

// ListSessionsForDate returns all session folder names for a given date,
// sorted by session number.
func (s *SessionManager) ListSessionsForDate(date string) ([]string, error) {
	datePath := filepath.Join(s.dataOutputPath, date)

	if _, err := os.Stat(datePath); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(datePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read date directory: %w", err)
	}

	sessionPattern := regexp.MustCompile(`^session_(\d+)$`)

	var sessions []string

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		if sessionPattern.MatchString(entry.Name()) {
			sessions = append(sessions, entry.Name())
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		numI, _ := strconv.Atoi(strings.TrimPrefix(sessions[i], "session_"))
		numJ, _ := strconv.Atoi(strings.TrimPrefix(sessions[j], "session_"))

		return numI < numJ
	})

	return sessions, nil
}
