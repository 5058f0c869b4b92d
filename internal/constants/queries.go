package constants

const (
	CountApplicationsByStatus = `
	SELECT status, COUNT(*) AS total FROM visa_applications GROUP BY status
	`
)
