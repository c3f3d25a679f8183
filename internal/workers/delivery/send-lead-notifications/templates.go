// internal/workers/delivery/send-lead-notifications/templates.go
package sendleadnotifications

const adminTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>New lead scored: {{company}}</h2>

  <p>
    <strong>Tier {{routing.tier}} ({{routing.label}})</strong>
    &middot; queue <strong>{{routing.queue}}</strong>
    &middot; respond within <strong>{{slaLabel}}</strong>
  </p>

  <table cellpadding="8" cellspacing="0" border="1" style="border-collapse: collapse; border-color: #ddd;">
    <tr><td><strong>Contact</strong></td><td>{{name}} &lt;{{workEmail}}&gt;, {{lead_profile.inferred_role}}</td></tr>
    <tr><td><strong>Persona</strong></td><td>{{lead_profile.buyer_persona_tag}}</td></tr>
    <tr><td><strong>Email</strong></td><td>{{lead_profile.email_type}} / {{lead_profile.email_local_part_type}}</td></tr>
    <tr><td><strong>Industry</strong></td><td>{{firmographics.industry_vertical}}</td></tr>
    <tr><td><strong>Volume</strong></td><td>{{firmographics.estimated_annual_volume}}</td></tr>
    <tr><td><strong>Complexity</strong></td><td>{{firmographics.supply_chain_complexity}}</td></tr>
    <tr><td><strong>Urgency</strong></td><td>{{qualification_engine.urgency_signal}}</td></tr>
    <tr><td><strong>Score</strong></td><td>{{qualification_engine.opportunity_score}} / 100 (data: {{qualification_engine.data_completeness}})</td></tr>
    <tr><td><strong>Source</strong></td><td>{{leadSource}}</td></tr>
  </table>

  <h3>Use case</h3>
  <blockquote>{{useCase}}</blockquote>

  <h3>Battlecard</h3>
  <ul>
    {{content_generation.admin_battlecard_html}}
  </ul>

  <h3>Reasoning</h3>
  <p style="color: #555;">{{qualification_engine._reasoning_trace}}</p>
  <p>Suggested destination: <strong>{{qualification_engine.routing_destination}}</strong></p>
</body>
</html>
`

const userPriorityTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; line-height: 1.6; color: #222; max-width: 600px;">
  <p>Hi {{name}},</p>

  <p>{{content_generation.user_email_opening_hook}}</p>

  <p>We have started a sourcing audit for {{company}} in <strong>{{firmographics.industry_vertical}}</strong>. Here is what we are looking at first:</p>
  <p style="border-left: 3px solid #1a73e8; padding-left: 10px;"><em>{{qualification_engine._reasoning_trace}}</em></p>

  <p><strong>First insight:</strong> {{content_generation.preview_key_insight}}</p>

  <p>A sourcing specialist will reply by <strong>{{slaLabel}}</strong> with the full picture.</p>

  <p>The NexSupply team</p>
</body>
</html>
`

const userReviewTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; line-height: 1.6; color: #222; max-width: 600px;">
  <p>Hi {{name}},</p>

  <p>Thank you for contacting NexSupply about <strong>{{firmographics.industry_vertical}}</strong> sourcing for {{company}}.</p>

  <p>Our team is reviewing the details you sent. {{content_generation.preview_key_insight}}</p>

  <p>We will get back to you soon.</p>

  <p>The NexSupply team</p>
</body>
</html>
`
