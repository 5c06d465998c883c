// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// KnowledgeService owns the corpus as one consistency unit;
// AnswerService grounds generation in retrieved context.
package services
