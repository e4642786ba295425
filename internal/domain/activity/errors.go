package activity

import "errors"

var ErrScheduleInconsistent = errors.New("schedule inconsistent")
