package service

import (
	"fmt"
	"strings"
	"time"

	"hotel-shift-bot/internal/models"
)

// FormatMinutes renders minutes as "7h" or "7h 30m".
func FormatMinutes(total int) string {
	if total < 0 {
		total = -total
	}
	hours, minutes := total/60, total%60
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func statusEmoji(status models.ShiftStatus) string {
	switch status {
	case models.ShiftConfirmed:
		return "🟢"
	case models.ShiftCompleted:
		return "✅"
	case models.ShiftCancelled:
		return "🚫"
	}
	return "🗓"
}

func absenceStatusEmoji(status models.AbsenceStatus) string {
	switch status {
	case models.AbsenceApproved:
		return "✅"
	case models.AbsenceRejected:
		return "❌"
	case models.AbsenceCancelled:
		return "🚫"
	}
	return "⏳"
}

// FormatShift renders one shift for chat output.
func FormatShift(shift *models.ShiftSchedule) string {
	if shift == nil {
		return "📭 No shift scheduled"
	}

	result := fmt.Sprintf(
		`📅 Shift #%d on %s
%s %s (%s)

%s`,
		shift.ID, shift.ScheduleDate,
		statusEmoji(shift.Status), shift.Status, shift.ShiftType,
		shift.FormatTimes(),
	)

	if shift.IsEnded() {
		result += fmt.Sprintf("\n⏳ Worked: %s", FormatMinutes(int(shift.WorkedDuration().Minutes())))
	}
	if shift.Notes != nil && *shift.Notes != "" {
		result += fmt.Sprintf("\n\n📝 Note: %s", *shift.Notes)
	}

	return result
}

// FormatAbsence renders one absence request.
func FormatAbsence(request *models.AbsenceRequest) string {
	line := fmt.Sprintf("%s #%d %s %s → %s (%d days) %s %s",
		request.RequestType.Emoji(),
		request.ID,
		request.RequestType,
		request.StartDate,
		request.EndDate,
		request.Days(),
		absenceStatusEmoji(request.Status),
		request.Status,
	)
	if request.Notes != nil && *request.Notes != "" {
		line += fmt.Sprintf("\n   📝 %s", *request.Notes)
	}
	return line
}

func FormatAbsenceList(requests []*models.AbsenceRequest) string {
	if len(requests) == 0 {
		return "📭 No absence requests yet"
	}

	var result strings.Builder
	result.WriteString("📋 Absence requests:\n\n")
	for i, request := range requests {
		fmt.Fprintf(&result, "%d. %s\n", i+1, FormatAbsence(request))
	}
	return result.String()
}

// FormatConflicts renders the overlap warning shown before an absence is submitted.
func FormatConflicts(c Conflicts) string {
	if !c.Any() {
		return ""
	}

	var result strings.Builder
	result.WriteString("⚠️ This range overlaps existing records:\n")
	for _, shift := range c.Shifts {
		fmt.Fprintf(&result, "• shift %s %s–%s (%s)\n", shift.ScheduleDate, shift.ShiftStart, shift.ShiftEnd, shift.Status)
	}
	for _, request := range c.Absences {
		fmt.Fprintf(&result, "• %s\n", FormatAbsence(request))
	}
	return result.String()
}

func FormatSummary(summary *models.MonthlySummary) string {
	if summary == nil {
		return "❌ Summary not found"
	}

	result := fmt.Sprintf(
		`📊 Summary for %s %d

📅 Planned:
   📋 Shifts: %d
   ⏰ Time: %s

✅ Worked:
   📋 Shifts: %d
   ⏰ Time: %s`,
		time.Month(summary.Month), summary.Year,
		summary.PlannedShifts, FormatMinutes(summary.PlannedMinutes),
		summary.WorkedShifts, FormatMinutes(summary.WorkedMinutes),
	)

	if summary.OvertimeMinutes > 0 {
		result += fmt.Sprintf("\n\n➕ Overtime: %s", FormatMinutes(summary.OvertimeMinutes))
	}
	if summary.DeficitMinutes > 0 {
		result += fmt.Sprintf("\n\n➖ Deficit: %s", FormatMinutes(summary.DeficitMinutes))
	}
	if summary.AbsenceDays > 0 {
		result += fmt.Sprintf("\n\n🏖️ Approved absence days: %d", summary.AbsenceDays)
	}

	return result
}
