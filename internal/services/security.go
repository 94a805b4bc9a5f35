package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Security event types written to the audit log.
const (
	EventLoginSuccess    = "LOGIN_SUCCESS"
	EventLoginFailed     = "LOGIN_FAILED"
	EventRegisterSuccess = "REGISTER_SUCCESS"
	EventRegisterFailed  = "REGISTER_FAILED"
	EventLogout          = "LOGOUT"
	EventSpamBlocked     = "SPAM_BLOCKED"
)

// SecurityLogger appends security events to a log file, one line each:
//
//	[2006-01-02 15:04:05] EVENT - details - IP: addr
//
// A nil *SecurityLogger discards events.
type SecurityLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewSecurityLogger opens (or creates) the log at path for appending.
func NewSecurityLogger(path string) (*SecurityLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open security log: %w", err)
	}
	return &SecurityLogger{file: file}, nil
}

// LogSecurityEvent writes one event line.
func (sl *SecurityLogger) LogSecurityEvent(eventType, details, ipAddress string) {
	if sl == nil {
		return
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.file == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logEntry := fmt.Sprintf("[%s] %s - %s - IP: %s\n", timestamp, eventType, details, ipAddress)

	if _, err := sl.file.WriteString(logEntry); err != nil {
		log.Printf("SecurityLogger.LogSecurityEvent - Write failed: %v", err)
	}
}

// Close closes the log file.
func (sl *SecurityLogger) Close() error {
	if sl == nil {
		return nil
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.file == nil {
		return nil
	}
	err := sl.file.Close()
	sl.file = nil
	return err
}

// SpamDetector flags contact messages that look like spam.
type SpamDetector struct {
	spamWords []string
}

func NewSpamDetector() *SpamDetector {
	return &SpamDetector{
		spamWords: []string{
			"bitcoin", "btc", "crypto", "wallet", "deposit", "withdraw",
			"investment", "profit", "earn money", "make money", "get rich",
			"quick money", "limited time", "exclusive offer",
			"free money", "lottery", "prize", "winner", "claim your",
			"account suspended", "security alert", "bank transfer",
			"western union", "moneygram", "inheritance",
			"bank account", "ssn", "social security", "redeem",
			"graph.org", "external sender", "unknown sender",
		},
	}
}

// IsSpam reports whether message contains a spam phrase.
func (sd *SpamDetector) IsSpam(message string) bool {
	messageLower := strings.ToLower(message)
	for _, word := range sd.spamWords {
		if strings.Contains(messageLower, word) {
			return true
		}
	}
	return false
}
