package llm_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/neural/pkg/llm"
)

var _ = Describe("WithSystemDirective", func() {
	const directive = "You are a test persona."

	It("prepends exactly one system message", func() {
		msgs := []llm.Message{{Role: llm.RoleUser, Content: "hi"}}

		out := llm.WithSystemDirective(directive, msgs)

		Expect(out).To(Equal([]llm.Message{
			{Role: llm.RoleSystem, Content: directive},
			{Role: llm.RoleUser, Content: "hi"},
		}))
	})

	It("preserves the caller's order", func() {
		msgs := []llm.Message{
			{Role: llm.RoleUser, Content: "one"},
			{Role: llm.RoleAssistant, Content: "two"},
			{Role: llm.RoleUser, Content: "three"},
			{Role: llm.RoleSystem, Content: "four"},
		}

		out := llm.WithSystemDirective(directive, msgs)

		Expect(out).To(HaveLen(len(msgs) + 1))
		Expect(out[1:]).To(Equal(msgs))
	})

	It("does not touch the caller's slice", func() {
		msgs := make([]llm.Message, 1, 4)
		msgs[0] = llm.Message{Role: llm.RoleUser, Content: "hi"}

		out := llm.WithSystemDirective(directive, msgs)
		out[1].Content = "changed"

		Expect(msgs[0].Content).To(Equal("hi"))
		Expect(msgs[:cap(msgs)][1]).To(Equal(llm.Message{}))
	})

	It("handles an empty conversation", func() {
		out := llm.WithSystemDirective(directive, nil)

		Expect(out).To(Equal([]llm.Message{{Role: llm.RoleSystem, Content: directive}}))
	})

	It("passes unknown roles through untouched", func() {
		msgs := []llm.Message{{Role: "narrator", Content: "once upon a time"}}

		out := llm.WithSystemDirective(directive, msgs)

		Expect(out[1].Role).To(Equal("narrator"))
	})
})

var _ = Describe("wire shapes", func() {
	It("decodes a chat request", func() {
		var req llm.ChatRequest
		err := json.Unmarshal([]byte(`{"messages":[{"role":"user","content":"hi"}]}`), &req)

		Expect(err).NotTo(HaveOccurred())
		Expect(req.Messages).To(HaveLen(1))
		Expect(req.Messages[0].Role).To(Equal("user"))
		Expect(req.Messages[0].Content).To(Equal("hi"))
		Expect(string(req.Messages[0].Raw)).To(Equal(`{"role":"user","content":"hi"}`))
	})

	It("keeps extra fields and structured content in the raw message", func() {
		var req llm.ChatRequest
		err := json.Unmarshal([]byte(`{"messages":[{"role":"user","content":[{"type":"text","text":"hi"}],"name":"bob"}]}`), &req)

		Expect(err).NotTo(HaveOccurred())
		Expect(req.Messages[0].Role).To(Equal("user"))
		Expect(req.Messages[0].Content).To(Equal(`[{"type":"text","text":"hi"}]`))
		Expect(string(req.Messages[0].Raw)).To(Equal(`{"role":"user","content":[{"type":"text","text":"hi"}],"name":"bob"}`))
	})

	It("accepts messages that are not objects", func() {
		var req llm.ChatRequest
		err := json.Unmarshal([]byte(`{"messages":["hi",42]}`), &req)

		Expect(err).NotTo(HaveOccurred())
		Expect(req.Messages).To(HaveLen(2))
		Expect(req.Messages[0].Role).To(BeEmpty())
		Expect(string(req.Messages[1].Raw)).To(Equal("42"))
	})

	It("still rejects a non-array message list", func() {
		var req llm.ChatRequest
		err := json.Unmarshal([]byte(`{"messages":"hi"}`), &req)

		Expect(err).To(HaveOccurred())
	})

	It("encodes the image response with the camel-cased key", func() {
		b, err := json.Marshal(llm.ImageResponse{ImageURL: "https://img.example/1.png"})

		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(MatchJSON(`{"imageUrl":"https://img.example/1.png"}`))
	})
})
