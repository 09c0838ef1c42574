// Package handlers provides API endpoint handling functionality.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	handlersErrors "github.com/stampmart/stampmart/internal/api/rest/errors"
	"github.com/stampmart/stampmart/internal/config"
	"github.com/stampmart/stampmart/internal/models/modeldto"
	"github.com/stampmart/stampmart/internal/service/ledger/v1"
	serviceErrors "github.com/stampmart/stampmart/internal/service/ledger/v1/errors"
	storageErrors "github.com/stampmart/stampmart/internal/storage/v1/errors"
)

const handlerTimeout = 500 * time.Millisecond

// Handler defines attributes of a struct available to its methods.
type Handler struct {
	service      ledger.Processor
	serverConfig *config.ServerConfig
	log          *zerolog.Logger
}

// InitHandlers initializes a handler object.
func InitHandlers(mainService ledger.Processor, serverConfig *config.ServerConfig, log *zerolog.Logger) (*Handler, error) {
	if mainService == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil ledger service was passed to handlers initializer"}
	}
	return &Handler{service: mainService, serverConfig: serverConfig, log: log}, nil
}

// HandleRegister processes user register requests.
func (h *Handler) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		var credentials modeldto.User
		if !h.readJSON(w, r, &credentials, "HandleRegister") {
			return
		}
		if len(credentials.Email) == 0 || len(credentials.Password) == 0 {
			h.log.Error().Msg("HandleRegister failed")
			http.Error(w, "Empty values are not allowed", http.StatusBadRequest)
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new user register request detected for %s", credentials.Email))
		accessToken, err := h.service.AddNewUser(ctx, credentials)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleRegister failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var alreadyExistsError *storageErrors.AlreadyExistsError
			if errors.As(err, &contextTimeoutExceededError) {
				http.Error(w, err.Error(), http.StatusGatewayTimeout)
			} else if errors.As(err, &alreadyExistsError) {
				w.WriteHeader(http.StatusConflict)
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		w.Header().Set("Authorization", "Bearer "+accessToken)
		w.WriteHeader(http.StatusOK)
	}
}

// HandleLogin processes user login requests.
func (h *Handler) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		var credentials modeldto.User
		if !h.readJSON(w, r, &credentials, "HandleLogin") {
			return
		}
		if credentials.Email == "" || credentials.Password == "" {
			h.log.Error().Msg("HandleLogin failed")
			http.Error(w, "Empty values are not allowed", http.StatusBadRequest)
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new login request detected for %s", credentials.Email))
		accessToken, err := h.service.LoginUser(ctx, credentials)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleLogin failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var notFoundError *storageErrors.NotFoundError
			if errors.As(err, &contextTimeoutExceededError) {
				http.Error(w, err.Error(), http.StatusGatewayTimeout)
			} else if errors.As(err, &notFoundError) {
				w.WriteHeader(http.StatusUnauthorized)
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		w.Header().Set("Authorization", "Bearer "+accessToken)
		w.WriteHeader(http.StatusOK)
	}
}

// HandleGetAccount processes account dashboard query requests.
func (h *Handler) HandleGetAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		userID, err := h.getUserID(r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetAccount failed")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		account, err := h.service.GetAccount(ctx, userID)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetAccount failed")
			h.writeStorageError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, account, "HandleGetAccount")
	}
}

// HandleAddFunds processes deposit requests.
func (h *Handler) HandleAddFunds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		userID, err := h.getUserID(r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleAddFunds failed")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		var newCredit modeldto.NewCredit
		if !h.readJSON(w, r, &newCredit, "HandleAddFunds") {
			return
		}
		account, err := h.service.AddFunds(ctx, userID, newCredit.Amount)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleAddFunds failed")
			var validationError *serviceErrors.ServiceValidationError
			if errors.As(err, &validationError) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.writeStorageError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, account, "HandleAddFunds")
	}
}

// HandleCheckout processes checkout settlement requests.
func (h *Handler) HandleCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		userID, err := h.getUserID(r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleCheckout failed")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		var newCheckout modeldto.NewCheckout
		if !h.readJSON(w, r, &newCheckout, "HandleCheckout") {
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new checkout request detected for order %s", newCheckout.OrderNumber))
		result, err := h.service.Checkout(ctx, userID, newCheckout)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleCheckout failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var insufficientFundsError *storageErrors.InsufficientFundsError
			var validationError *serviceErrors.ServiceValidationError
			var idempotencyConflictError *serviceErrors.ServiceIdempotencyConflictError
			var partialCommitError *serviceErrors.ServicePartialCommitError
			if errors.As(err, &contextTimeoutExceededError) {
				http.Error(w, err.Error(), http.StatusGatewayTimeout)
			} else if errors.As(err, &validationError) {
				http.Error(w, err.Error(), http.StatusBadRequest)
			} else if errors.As(err, &idempotencyConflictError) {
				http.Error(w, err.Error(), http.StatusConflict)
			} else if errors.As(err, &insufficientFundsError) {
				h.writeJSON(w, http.StatusPaymentRequired, modeldto.InsufficientFunds{
					Error:          "insufficient funds",
					CurrentBalance: insufficientFundsError.CurrentBalance,
					RequiredAmount: insufficientFundsError.RequiredAmount,
				}, "HandleCheckout")
			} else if errors.As(err, &partialCommitError) {
				http.Error(w, "Payment was taken but the order could not be recorded, reconciliation is in progress", http.StatusInternalServerError)
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		h.writeJSON(w, http.StatusOK, result, "HandleCheckout")
	}
}

// HandlePlaceOrder processes new order requests outside of the settlement path.
func (h *Handler) HandlePlaceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		userID, err := h.getUserID(r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandlePlaceOrder failed")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		var newOrder modeldto.NewOrder
		if !h.readJSON(w, r, &newOrder, "HandlePlaceOrder") {
			return
		}
		order, err := h.service.PlaceOrder(ctx, userID, newOrder)
		if err != nil {
			h.log.Error().Err(err).Msg("HandlePlaceOrder failed")
			var validationError *serviceErrors.ServiceValidationError
			if errors.As(err, &validationError) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.writeStorageError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, order, "HandlePlaceOrder")
	}
}

// HandleGetOrders processes order listing requests.
func (h *Handler) HandleGetOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		userID, err := h.getUserID(r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetOrders failed")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		orders, err := h.service.GetOrders(ctx, userID)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetOrders failed")
			h.writeStorageError(w, err)
			return
		}
		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.writeJSON(w, http.StatusOK, orders, "HandleGetOrders")
	}
}

// HandleGetTransactions processes transaction listing requests.
func (h *Handler) HandleGetTransactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		userID, err := h.getUserID(r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetTransactions failed")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		transactions, err := h.service.GetTransactions(ctx, userID)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetTransactions failed")
			h.writeStorageError(w, err)
			return
		}
		if len(transactions) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.writeJSON(w, http.StatusOK, transactions, "HandleGetTransactions")
	}
}

// HandleGetAuditTrail processes cross-user transaction listing requests.
func (h *Handler) HandleGetAuditTrail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		transactions, err := h.service.GetAuditTrail(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetAuditTrail failed")
			h.writeStorageError(w, err)
			return
		}
		if len(transactions) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.writeJSON(w, http.StatusOK, transactions, "HandleGetAuditTrail")
	}
}

// getUserID retrieves user identifier from the request metadata.
func (h *Handler) getUserID(r *http.Request) (string, error) {
	accessToken := r.Header.Get("Authorization")
	if len(accessToken) == 0 {
		return "", errors.New("token authorization required")
	}
	accessToken = strings.Replace(accessToken, "Bearer ", "", 1)
	userID, _, err := h.service.GetUserInfo(accessToken)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, dest interface{}, caller string) bool {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "Invalid Content-Type", http.StatusBadRequest)
		return false
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg(caller + " failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return false
	}
	err = json.Unmarshal(b, dest)
	if err != nil {
		h.log.Error().Err(err).Msg(caller + " failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}, caller string) {
	resBody, err := json.Marshal(body)
	if err != nil {
		h.log.Error().Err(err).Msg(caller + " failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(resBody)
	if err != nil {
		h.log.Error().Err(err).Msg(caller + " failed")
	}
}

func (h *Handler) writeStorageError(w http.ResponseWriter, err error) {
	var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
	if errors.As(err, &contextTimeoutExceededError) {
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
