package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/markelira/elira-insight/email"
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/models"
	"github.com/markelira/elira-insight/models/platform"
	"github.com/markelira/elira-insight/utils"
)

const (
	WeeklyInsightsJob = "weekly_insights"

	activeUserWindow = 30 * utils.Day

	defaultInsightWorkers = 8
)

type InsightConfig struct {
	Workers int `yaml:"workers"`
}

// InsightService computes the week-over-week learning comparison for every
// active user and writes one insight notification per user per week.
type InsightService struct {
	cfg           InsightConfig
	progress      ProgressSource
	activities    ActivitySource
	notifications NotificationSink
	users         UserDirectory
	emailer       *email.Service
}

func NewInsightService(cfg InsightConfig, progress ProgressSource, activities ActivitySource,
	notifications NotificationSink, users UserDirectory, emailer *email.Service) *InsightService {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultInsightWorkers
	}
	return &InsightService{
		cfg:           cfg,
		progress:      progress,
		activities:    activities,
		notifications: notifications,
		users:         users,
		emailer:       emailer,
	}
}

func (is *InsightService) Name() string {
	return WeeklyInsightsJob
}

func (is *InsightService) Spec() string {
	return "0 9 * * MON"
}

// Window collapses every run on the same calendar day to one logical run.
func (is *InsightService) Window(now time.Time) time.Time {
	return utils.GetDayBeginTime(now)
}

// Run fans the active user set out over a bounded worker pool. One user's
// failure skips only that user; a failure of the final bulk commit fails
// the whole run.
func (is *InsightService) Run(ctx context.Context, now time.Time) (int, error) {
	thisWeekStart, lastWeekStart, lastWeekEnd := utils.WeekWindows(now)
	since := now.Add(-activeUserWindow)

	var (
		mu            sync.Mutex
		wg            sync.WaitGroup
		notifications = make([]*models.Notification, 0)
		checked       int
		skipped       int
	)

	userC := make(chan *platform.Progress, is.cfg.Workers)
	for i := 0; i < is.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for progress := range userC {
				notification, err := is.buildForUser(ctx, progress, now, thisWeekStart, lastWeekStart, lastWeekEnd)
				if err != nil {
					log.Error(ctx).Err(err).Str("insight_user", progress.UserID).Msg("failed to build insight, skip user")
					mu.Lock()
					skipped++
					mu.Unlock()
					continue
				}
				mu.Lock()
				notifications = append(notifications, notification)
				mu.Unlock()
			}
		}()
	}

	err := is.progress.EachActive(ctx, since, func(progress *platform.Progress) error {
		checked++
		userC <- progress
		return nil
	})
	close(userC)
	wg.Wait()
	if err != nil {
		return 0, fmt.Errorf("failed to iterate active users: %w", err)
	}

	log.Info(ctx).
		Time(log.KeyWindowStart, thisWeekStart).
		Time(log.KeyWindowEnd, now).
		Msgf("checked %d active users, built %d insights, skipped %d\n", checked, len(notifications), skipped)

	if len(notifications) == 0 {
		return 0, nil
	}
	if err := is.notifications.BulkUpsert(ctx, notifications); err != nil {
		return 0, fmt.Errorf("failed to commit insight notifications: %w", err)
	}
	is.deliverEmails(ctx, notifications)
	return len(notifications), nil
}

func (is *InsightService) buildForUser(ctx context.Context, progress *platform.Progress,
	now, thisWeekStart, lastWeekStart, lastWeekEnd time.Time) (*models.Notification, error) {
	thisWeek, err := is.activities.ListBetween(ctx, progress.UserID, thisWeekStart, now, true)
	if err != nil {
		return nil, err
	}
	lastWeek, err := is.activities.ListBetween(ctx, progress.UserID, lastWeekStart, lastWeekEnd, false)
	if err != nil {
		return nil, err
	}
	return BuildInsight(progress, thisWeek, lastWeek, now), nil
}

// BuildInsight reduces the two activity windows to one notification.
func BuildInsight(progress *platform.Progress, thisWeek, lastWeek []*platform.Activity, now time.Time) *models.Notification {
	var (
		thisWeekTime int64
		lastWeekTime int64
		lessons      int
	)
	for _, activity := range thisWeek {
		thisWeekTime += activity.DurationSeconds
		if activity.Type == platform.ActivityLessonCompleted {
			lessons++
		}
	}
	for _, activity := range lastWeek {
		lastWeekTime += activity.DurationSeconds
	}

	pct := PercentageChange(thisWeekTime, lastWeekTime)
	trend := ClassifyTrend(pct)
	message, recommendations := insightMessage(trend, pct, lessons, progress.CurrentStreak)
	timeString := utils.FormatLearningTime(thisWeekTime)

	weekStart := utils.WeekStartDate(now.Add(-utils.Week))
	metadata := models.InsightMetadata{
		WeeklyInsight:        true,
		ThisWeekLearningTime: thisWeekTime,
		LastWeekLearningTime: lastWeekTime,
		PercentageChange:     pct,
		Trend:                trend,
		LessonsCompleted:     lessons,
		Recommendations:      recommendations,
	}
	return &models.Notification{
		ID:         models.InsightNotificationID(progress.UserID, weekStart),
		UserID:     progress.UserID,
		Type:       models.NotificationTypeSystem,
		Title:      "Heti összefoglaló",
		Message:    fmt.Sprintf("%s Ezen a héten összesen %s-t tanultál.", message, timeString),
		Priority:   models.PriorityMedium,
		Read:       false,
		ActionURL:  "/dashboard",
		ActionText: "Részletek megtekintése",
		Metadata: map[string]interface{}{
			"weekly_insight":          metadata.WeeklyInsight,
			"this_week_learning_time": metadata.ThisWeekLearningTime,
			"last_week_learning_time": metadata.LastWeekLearningTime,
			"percentage_change":       metadata.PercentageChange,
			"trend":                   metadata.Trend,
			"lessons_completed":       metadata.LessonsCompleted,
			"recommendations":         metadata.Recommendations,
		},
		CreatedAt: now,
	}
}

// PercentageChange implements the asymmetric week-over-week rule: a real
// ratio only when last week is non-zero, a flat 100 when activity appeared
// from nothing, and 0 when both weeks are empty.
func PercentageChange(thisWeek, lastWeek int64) int {
	if lastWeek > 0 {
		return utils.RoundPercent(100 * float64(thisWeek-lastWeek) / float64(lastWeek))
	}
	if thisWeek > 0 {
		return 100
	}
	return 0
}

// ClassifyTrend buckets the change with strict inequalities, improving
// checked first.
func ClassifyTrend(pct int) string {
	if pct > 10 {
		return models.TrendImproving
	}
	if pct < -10 {
		return models.TrendDeclining
	}
	return models.TrendStable
}

func insightMessage(trend string, pct, lessons, currentStreak int) (string, []string) {
	abs := pct
	if abs < 0 {
		abs = -abs
	}
	recommendations := make([]string, 0, 3)
	switch trend {
	case models.TrendImproving:
		message := fmt.Sprintf("Nagyszerű hét! %d%%-kal több időt töltöttél tanulással, mint múlt héten. %d leckét fejeztél be. Folytasd így!", abs, lessons)
		recommendations = append(recommendations, "Tartsd fent a lendületet a következő héten is")
		if currentStreak < 7 {
			recommendations = append(recommendations, "Próbálj meg 7 napos streakot elérni")
		}
		return message, recommendations
	case models.TrendDeclining:
		message := fmt.Sprintf("Ezen a héten %d%%-kal kevesebb időt töltöttél tanulással. Ne aggódj, újra fel tudod venni a ritmust!", abs)
		recommendations = append(recommendations,
			"Állíts be napi 15 perces tanulási időt",
			"Kezdd a legrövidebb modullal",
			"Csatlakozz egy konzultációhoz motivációért")
		return message, recommendations
	default:
		message := fmt.Sprintf("Jó munka ezen a héten! %d leckét fejeztél be. A tanulási időd stabil maradt.", lessons)
		recommendations = append(recommendations,
			"Próbálj meg több időt szánni a következő héten",
			"Tölts le egy új marketing sablont a Template Library-ből")
		return message, recommendations
	}
}

// deliverEmails mirrors the in-app insight to email for users we can
// resolve. Failures are logged only; delivery never fails the job.
func (is *InsightService) deliverEmails(ctx context.Context, notifications []*models.Notification) {
	if is.emailer == nil {
		return
	}
	for _, notification := range notifications {
		user, err := is.users.Lookup(ctx, notification.UserID)
		if err != nil {
			log.Warn(ctx).Err(err).Str("insight_user", notification.UserID).Msg("no user record for insight email")
			continue
		}
		msg := email.Message{
			ToName:  user.GivenName,
			ToEmail: user.Email,
			Subject: notification.Title,
			Text:    notification.Message,
		}
		if err := is.emailer.Send(ctx, msg); err != nil {
			log.Warn(ctx).Err(err).Str("insight_user", notification.UserID).Msg("failed to send insight email")
		}
	}
}
