//go:generate mockgen -source=../logger.go           -destination=./mock_logger.go           -package=mocks
//go:generate mockgen -source=../message_consumer.go -destination=./mock_message_consumer.go -package=mocks
//go:generate mockgen -source=../search.go           -destination=./mock_search.go           -package=mocks
//go:generate mockgen -source=../leads.go            -destination=./mock_leads.go            -package=mocks
//go:generate mockgen -source=../health.go           -destination=./mock_health.go           -package=mocks

package mocks
