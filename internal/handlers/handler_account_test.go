package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/techbank/banking-backend/internal/core/services"
	"github.com/techbank/banking-backend/internal/dto"
	"github.com/techbank/banking-backend/internal/handlers"
	"github.com/techbank/banking-backend/internal/platform/config"
	"github.com/techbank/banking-backend/internal/repositories/memory"
)

// The account API suite runs the real router against the in-memory stores, so
// binding, validation, status mapping and service wiring are all exercised
// together.
type AccountAPITestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (suite *AccountAPITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{IsProduction: true, BalanceMaxRetries: 3, RetryBackoffBase: 1}
	repos := memory.NewRepositoryProvider()
	container := services.NewServiceContainer(cfg, repos)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, container)
}

func (suite *AccountAPITestSuite) request(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AccountAPITestSuite) openAccount(number string) {
	w := suite.request(http.MethodPost, "/api/v1/accounts", `{"accountNumber":"`+number+`","accountHolder":"Holder"}`)
	suite.Require().Equal(http.StatusCreated, w.Code)
}

func (suite *AccountAPITestSuite) TestOpenAccount() {
	w := suite.request(http.MethodPost, "/api/v1/accounts", `{"accountNumber":"A-1","accountHolder":"Alice"}`)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("A-1", resp.AccountNumber)
	suite.Equal("ACTIVE", string(resp.Status))
	suite.True(resp.Balance.IsZero())
}

func (suite *AccountAPITestSuite) TestOpenAccount_MissingFields() {
	w := suite.request(http.MethodPost, "/api/v1/accounts", `{"accountNumber":"A-1"}`)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountAPITestSuite) TestOpenAccount_Duplicate() {
	suite.openAccount("A-1")
	w := suite.request(http.MethodPost, "/api/v1/accounts", `{"accountNumber":"A-1","accountHolder":"Bob"}`)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountAPITestSuite) TestDepositAndBalance() {
	suite.openAccount("A-1")

	w := suite.request(http.MethodPost, "/api/v1/accounts/A-1/deposit", `{"amount":"70.00"}`)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/accounts/A-1/balance", "")
	suite.Require().Equal(http.StatusOK, w.Code)

	var resp dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("70", resp.Balance.String())
}

func (suite *AccountAPITestSuite) TestDeposit_NonPositiveAmountRejectedByBinding() {
	suite.openAccount("A-1")

	w := suite.request(http.MethodPost, "/api/v1/accounts/A-1/deposit", `{"amount":"-5"}`)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountAPITestSuite) TestWithdraw_InsufficientFunds() {
	suite.openAccount("A-1")
	suite.request(http.MethodPost, "/api/v1/accounts/A-1/deposit", `{"amount":"10.00"}`)

	w := suite.request(http.MethodPost, "/api/v1/accounts/A-1/withdraw", `{"amount":"50.00"}`)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/accounts/A-1/balance", "")
	var resp dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("10", resp.Balance.String())
}

func (suite *AccountAPITestSuite) TestGetAccount_NotFound() {
	w := suite.request(http.MethodGet, "/api/v1/accounts/ghost", "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountAPITestSuite) TestFreezeBlocksDeposit() {
	suite.openAccount("A-1")

	w := suite.request(http.MethodPost, "/api/v1/accounts/A-1/freeze", "")
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/accounts/A-1/deposit", `{"amount":"10.00"}`)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountAPITestSuite) TestTransferEndToEnd() {
	suite.openAccount("A-1")
	suite.openAccount("A-2")
	suite.request(http.MethodPost, "/api/v1/accounts/A-1/deposit", `{"amount":"100.00"}`)

	w := suite.request(http.MethodPost, "/api/v1/transfers", `{"sourceAccount":"A-1","destinationAccount":"A-2","amount":"20.00"}`)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var record dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &record))
	suite.Equal("TRANSFER", string(record.TransactionType))
	suite.Equal("COMPLETED", string(record.Status))

	w = suite.request(http.MethodGet, "/api/v1/accounts/A-2/balance", "")
	var resp dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("20", resp.Balance.String())

	w = suite.request(http.MethodGet, "/api/v1/accounts/A-1/transactions/outgoing", "")
	suite.Require().Equal(http.StatusOK, w.Code)
	var page dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	suite.Len(page.Transactions, 1)
}

func (suite *AccountAPITestSuite) TestTransfer_SameAccountRejected() {
	suite.openAccount("A-1")
	suite.request(http.MethodPost, "/api/v1/accounts/A-1/deposit", `{"amount":"100.00"}`)

	w := suite.request(http.MethodPost, "/api/v1/transfers", `{"sourceAccount":"A-1","destinationAccount":"A-1","amount":"20.00"}`)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountAPITestSuite) TestHealth() {
	w := suite.request(http.MethodGet, "/health", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func TestAccountAPITestSuite(t *testing.T) {
	suite.Run(t, new(AccountAPITestSuite))
}
