// regionpulse-monitor is a scheduled watchdog. On each tick it submits a
// monitoring job to a running regionpulse server, polls until the job
// reaches a terminal state, and logs the resulting risk assessment.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var (
	apiURL       = flag.String("api-url", getEnv("REGIONPULSE_API_URL", "http://localhost:8080"), "Base URL of the regionpulse server")
	schedule     = flag.String("schedule", "0 */6 * * *", "Cron schedule for monitoring sweeps (default: every 6 hours)")
	intent       = flag.String("intent", "comprehensive_check", "Monitoring intent to submit")
	vigilance    = flag.String("vigilance", "standard", "Vigilance level (routine, standard, enhanced, maximum)")
	timePeriod   = flag.String("time-period", "90d", "Analysis window (7d, 30d, 90d, 180d, 365d)")
	focusArea    = flag.String("focus-area", "", "Optional state to focus the sweep on")
	pollInterval = flag.Duration("poll-interval", 2*time.Second, "How often to poll job status")
	pollTimeout  = flag.Duration("poll-timeout", 10*time.Minute, "How long to wait for a job to finish")
	runOnce      = flag.Bool("run-once", false, "Run one sweep and exit (for testing)")
)

type jobRequest struct {
	Intent     string `json:"intent"`
	FocusArea  string `json:"focus_area,omitempty"`
	TimePeriod string `json:"time_period"`
	Vigilance  string `json:"vigilance"`
}

type jobStatus struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

type jobResults struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Report *struct {
		ReportID string `json:"report_id"`
		Summary  string `json:"summary"`
		Risk     struct {
			RiskIndex  int    `json:"risk_index"`
			RiskLevel  string `json:"risk_level"`
			Confidence string `json:"confidence"`
		} `json:"risk"`
	} `json:"report,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	client := &http.Client{Timeout: 30 * time.Second}

	if *runOnce {
		if err := runSweep(log, client); err != nil {
			log.WithError(err).Fatal("monitoring sweep failed")
		}
		return
	}

	c := cron.New()
	_, err := c.AddFunc(*schedule, func() {
		if err := runSweep(log, client); err != nil {
			log.WithError(err).Error("monitoring sweep failed")
		}
	})
	if err != nil {
		log.WithError(err).Fatal("failed to schedule monitoring sweeps")
	}

	c.Start()
	log.WithFields(logrus.Fields{
		"schedule":  *schedule,
		"api_url":   *apiURL,
		"intent":    *intent,
		"vigilance": *vigilance,
	}).Info("regionpulse monitor started")

	select {}
}

func runSweep(log *logrus.Logger, client *http.Client) error {
	jobID, err := submitJob(client)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	log.WithField("job_id", jobID).Info("monitoring job submitted")

	deadline := time.Now().Add(*pollTimeout)
	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("job %s did not finish within %v", jobID, *pollTimeout)
		}
		time.Sleep(*pollInterval)

		status, err := fetchStatus(client, jobID)
		if err != nil {
			return fmt.Errorf("poll: %w", err)
		}
		log.WithFields(logrus.Fields{
			"job_id":   jobID,
			"status":   status.Status,
			"progress": status.Progress,
			"message":  status.Message,
		}).Debug("job progress")

		if status.Status == "completed" || status.Status == "failed" {
			break
		}
	}

	results, err := fetchResults(client, jobID)
	if err != nil {
		return fmt.Errorf("results: %w", err)
	}
	if results.Status == "failed" {
		return fmt.Errorf("job %s failed: %s", jobID, results.FailureReason)
	}
	if results.Report == nil {
		return fmt.Errorf("job %s completed without a report", jobID)
	}

	log.WithFields(logrus.Fields{
		"job_id":     jobID,
		"report_id":  results.Report.ReportID,
		"risk_index": results.Report.Risk.RiskIndex,
		"risk_level": results.Report.Risk.RiskLevel,
		"confidence": results.Report.Risk.Confidence,
	}).Info(results.Report.Summary)
	return nil
}

func submitJob(client *http.Client) (string, error) {
	body, err := json.Marshal(jobRequest{
		Intent:     *intent,
		FocusArea:  *focusArea,
		TimePeriod: *timePeriod,
		Vigilance:  *vigilance,
	})
	if err != nil {
		return "", err
	}

	resp, err := client.Post(*apiURL+"/api/v1/monitoring/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var status jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", err
	}
	return status.JobID, nil
}

func fetchStatus(client *http.Client, jobID string) (*jobStatus, error) {
	resp, err := client.Get(*apiURL + "/api/v1/monitoring/jobs/" + jobID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var status jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

func fetchResults(client *http.Client, jobID string) (*jobResults, error) {
	resp, err := client.Get(*apiURL + "/api/v1/monitoring/jobs/" + jobID + "/results")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var results jobResults
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	return &results, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
