package mocks

//go:generate mockgen -destination=./mock_dataprovider.go -package=mocks github.com/marketloop/marketloop/pkg/dataprovider Provider
//go:generate mockgen -destination=./mock_evaluator.go -package=mocks github.com/marketloop/marketloop/internal/evaluator Evaluator
//go:generate mockgen -destination=./mock_executor.go -package=mocks github.com/marketloop/marketloop/internal/executor Executor
//go:generate mockgen -destination=./mock_sink.go -package=mocks github.com/marketloop/marketloop/internal/report Sink
