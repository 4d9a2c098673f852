package auth

import (
	"sync"
	"time"
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// loginLimiter はIP単位のログイン試行回数制限です。
// 状態はプロセス内に閉じており、セッションともストアとも共有しません。
type loginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptState
	now      func() time.Time
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{
		attempts: make(map[string]*attemptState),
		now:      time.Now,
	}
}

// checkLock はロック中なら残り時間を、そうでなければ 0 を返します。
func (l *loginLimiter) checkLock(ip string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.attempts[ip]
	if !ok {
		return 0
	}
	now := l.now()
	if now.After(state.lockedUntil) {
		return 0
	}
	return state.lockedUntil.Sub(now)
}

// recordFailure は失敗を記録し、残り試行回数を返します。
// 試行ウィンドウを超えた古い記録は作り直します。
func (l *loginLimiter) recordFailure(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, ok := l.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		l.attempts[ip] = state
	}

	state.count++
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
	}

	remaining := maxLoginAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// resetAttempts はログイン成功時に失敗履歴を消します。
func (l *loginLimiter) resetAttempts(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, ip)
}
