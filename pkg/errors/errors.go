package errors

import "errors"

// ErrLockNotAcquired 다른 요청이 같은 학생의 계산을 진행 중
var ErrLockNotAcquired = errors.New("다른 계산 작업이 진행 중입니다")

// ErrLockNotHeld 해제하려는 잠금을 더 이상 보유하고 있지 않음 (TTL 만료 등)
var ErrLockNotHeld = errors.New("잠금을 보유하고 있지 않습니다")
