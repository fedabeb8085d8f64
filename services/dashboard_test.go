package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ottawa-housing/models"
	"ottawa-housing/utils"
)

// MockSeriesReader implements SeriesReader for testing
type MockSeriesReader struct {
	mock.Mock
}

func (m *MockSeriesReader) FetchSeries(ctx context.Context, table, column, secondary string) ([]models.Observation, error) {
	args := m.Called(ctx, table, column, secondary)
	obs, _ := args.Get(0).([]models.Observation)
	return obs, args.Error(1)
}

func obs(date string, v float64) models.Observation {
	return models.Observation{Date: day(date), Value: models.Float(v)}
}

func TestBuildGraphSales(t *testing.T) {
	reader := new(MockSeriesReader)
	reader.On("FetchSeries", mock.Anything, models.TableFreeholdSales, models.ColMedianSoldPrice, "").
		Return([]models.Observation{
			obs("2023-05-05", 600000),
			obs("2024-04-05", 600000),
			obs("2024-05-03", 660000),
		}, nil)
	reader.On("FetchSeries", mock.Anything, models.TableCondoSales, models.ColMedianSoldPrice, "").
		Return([]models.Observation{
			obs("2024-04-05", 400000),
			obs("2024-05-03", 380000),
		}, nil)

	svc := NewDashboardService(reader, utils.NewNopLogger())
	g, err := svc.BuildGraph(context.Background(), MetricSales)
	require.NoError(t, err)
	reader.AssertExpectations(t)

	assert.False(t, g.Failed())
	require.Len(t, g.Points, 3)
	require.NotNil(t, g.Summary)
	assert.Equal(t, 660000.0, *g.Summary.LatestFreehold)
	assert.Equal(t, 380000.0, *g.Summary.LatestCondo)
	assert.InDelta(t, 10.0, *g.Summary.FreeholdMoM, 1e-9)
	assert.InDelta(t, -5.0, *g.Summary.CondoMoM, 1e-9)
	assert.InDelta(t, 10.0, *g.Summary.FreeholdYoY, 1e-9)
}

func TestBuildGraphReadFailure(t *testing.T) {
	reader := new(MockSeriesReader)
	reader.On("FetchSeries", mock.Anything, models.TableFreeholdRentals, models.ColMedianRentedPrice, "").
		Return([]models.Observation{obs("2024-05-03", 2800)}, nil)
	reader.On("FetchSeries", mock.Anything, models.TableCondoRentals, models.ColMedianRentedPrice, "").
		Return(nil, errors.New("connection refused"))

	svc := NewDashboardService(reader, utils.NewNopLogger())
	g, err := svc.BuildGraph(context.Background(), MetricRent)
	require.NoError(t, err)

	assert.True(t, g.Failed())
	assert.Equal(t, "Failed to load rental data", g.Error)
	assert.Nil(t, g.Summary)
	assert.Empty(t, g.Points)
}

func TestBuildGraphUnknownMetric(t *testing.T) {
	svc := NewDashboardService(new(MockSeriesReader), utils.NewNopLogger())
	_, err := svc.BuildGraph(context.Background(), "days-on-market")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestBuildGraphRequestsSecondaryColumn(t *testing.T) {
	reader := new(MockSeriesReader)
	reader.On("FetchSeries", mock.Anything, models.TableFreeholdRentals, models.ColActiveListings, models.ColRentedProperties).
		Return([]models.Observation{}, nil)
	reader.On("FetchSeries", mock.Anything, models.TableCondoRentals, models.ColActiveListings, models.ColRentedProperties).
		Return([]models.Observation{}, nil)

	svc := NewDashboardService(reader, utils.NewNopLogger())
	g, err := svc.BuildGraph(context.Background(), MetricRentalListings)
	require.NoError(t, err)
	reader.AssertExpectations(t)
	assert.Nil(t, g.Summary)
	assert.False(t, g.Failed())
}

func TestSalesPagePartialFailure(t *testing.T) {
	reader := new(MockSeriesReader)
	reader.On("FetchSeries", mock.Anything, models.TableFreeholdSales, models.ColMedianSoldPrice, "").
		Return([]models.Observation{obs("2024-04-05", 500000), obs("2024-05-03", 550000)}, nil)
	reader.On("FetchSeries", mock.Anything, models.TableCondoSales, models.ColMedianSoldPrice, "").
		Return([]models.Observation{obs("2024-05-03", 380000)}, nil)
	reader.On("FetchSeries", mock.Anything, models.TableFreeholdSales, models.ColActiveListings, models.ColMedianDOM).
		Return(nil, errors.New("timeout"))
	reader.On("FetchSeries", mock.Anything, models.TableCondoSales, models.ColActiveListings, models.ColMedianDOM).
		Return([]models.Observation{}, nil)

	svc := NewDashboardService(reader, utils.NewNopLogger())
	page, err := svc.SalesPage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Ottawa Housing Market Dashboard", page.Title)
	require.Len(t, page.Sections, 2)

	sales := page.Sections[0]
	assert.Equal(t, MetricSales, sales.Metric)
	require.Len(t, sales.Sentences, 2)
	assert.Contains(t, sales.Sentences[0], "$550,000")
	assert.Contains(t, sales.Sentences[0], "+10.0%")
	assert.Contains(t, sales.Sentences[1], "month over month change of N/A")

	listings := page.Sections[1]
	assert.Equal(t, MetricSalesListings, listings.Metric)
	assert.Equal(t, "Failed to load sales listings data", listings.Error)
	assert.Empty(t, listings.Sentences)
}

func TestRentalsPageEmptyData(t *testing.T) {
	reader := new(MockSeriesReader)
	reader.On("FetchSeries", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Observation{}, nil)

	svc := NewDashboardService(reader, utils.NewNopLogger())
	page, err := svc.RentalsPage(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Sections, 2)
	assert.Equal(t, "No rental data available", page.Sections[0].Empty)
	assert.Equal(t, "No rental listings data available", page.Sections[1].Empty)
}

func TestBuildPageUnknown(t *testing.T) {
	svc := NewDashboardService(new(MockSeriesReader), utils.NewNopLogger())
	_, err := svc.BuildPage(context.Background(), "condos")
	assert.ErrorIs(t, err, ErrUnknownPage)
}
