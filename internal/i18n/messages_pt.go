package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	pt := language.BrazilianPortuguese
	for k, v := range map[string]string{
		KeyBadRequest:         "Requisição inválida.",
		KeyValidationFailed:   "Alguns campos estão inválidos.",
		KeyNotFound:           "Recurso não encontrado.",
		KeyModelNotFound:      "Perfil não encontrado.",
		KeyRouteNotFound:      "Rota não encontrada.",
		KeyMethodNotAllowed:   "Método não permitido.",
		KeyUpstreamFailed:     "Não foi possível carregar os dados. Tente novamente em instantes.",
		KeyUnauthorized:       "Faça login para continuar.",
		KeyTooManyRequests:    "Muitas requisições. Aguarde um momento.",
		KeyInternal:           "Erro interno. Tente novamente.",
		KeyPayloadTooLarge:    "Conteúdo muito grande.",
		KeyEmailTaken:         "Este email já está cadastrado.",
		KeyInvalidLogin:       "Email ou senha incorretos.",
		KeyEmptyPrompt:        "Digite uma mensagem.",
		KeySendInFlight:       "Aguarde a resposta da mensagem anterior.",
		KeyConversationGone:   "Conversa não encontrada ou expirada.",
		KeyChatFailed:         "Desculpe, ocorreu um erro ao processar sua mensagem. Tente novamente.",
		KeyCategoryModelo:     "Modelos",
		KeyCategoryTradutora:  "Tradutoras",
		KeyCategoryMassagista: "Massagistas",
	} {
		_ = message.SetString(pt, k, v)
	}
	_ = message.SetString(pt, KeyPromptTooLong, "Mensagem muito longa (máximo de %d caracteres).")
}
